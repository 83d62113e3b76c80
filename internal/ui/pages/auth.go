package pages

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/bigkaa/medhistory/portal-module/internal/domain/model"
	"github.com/bigkaa/medhistory/portal-module/internal/domain/rbac"
)

// AuthMode — режим формы на публичной странице.
type AuthMode string

const (
	ModeLogin    AuthMode = "login"
	ModeRegister AuthMode = "register"
)

// ParseAuthMode возвращает режим формы; всё, кроме "register", — вход.
func ParseAuthMode(s string) AuthMode {
	if s == string(ModeRegister) {
		return ModeRegister
	}
	return ModeLogin
}

// AuthPageData — данные страницы входа и регистрации.
type AuthPageData struct {
	Session model.Session
	Mode    AuthMode
	// Email — значение поля после неудачной попытки.
	Email string
	// Role — выбранная роль в форме регистрации.
	Role    rbac.Role
	Message Message
}

// AuthPage — публичная точка входа: форма входа или регистрации.
func AuthPage(data AuthPageData) templ.Component {
	titleKey := "auth.login.title"
	if data.Mode == ModeRegister {
		titleKey = "auth.register.title"
	}
	return Layout(LayoutData{TitleKey: titleKey, Session: data.Session}, authForm(data, titleKey))
}

func authForm(data AuthPageData, titleKey string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := newWriter(ctx, w)
		register := data.Mode == ModeRegister

		hw.raw(`<section class="card narrow" id="auth">`)
		hw.raw(`<h2>`)
		hw.t(titleKey)
		hw.raw(`</h2>`)

		if register {
			hw.raw(`<a class="btn btn-secondary" href="/">`)
			hw.t("auth.switch_to_login")
		} else {
			hw.raw(`<a class="btn btn-secondary" href="/?mode=register">`)
			hw.t("auth.switch_to_register")
		}
		hw.raw(`</a>`)

		hw.message("auth-message", data.Message)

		action := "/login"
		if register {
			action = "/register"
		}
		hw.raw(`<form method="post" class="form"`)
		hw.attr("action", action)
		hw.raw(`>`)

		hw.raw(`<input type="email" name="email" required`)
		hw.attr("placeholder", inputLabel(hw, "auth.email"))
		hw.attr("value", data.Email)
		hw.raw(`>`)
		hw.raw(`<input type="password" name="password" required`)
		hw.attr("placeholder", inputLabel(hw, "auth.password"))
		hw.raw(`>`)

		if register {
			selected := data.Role
			if !selected.IsValid() {
				selected = rbac.RolePatient
			}
			hw.raw(`<select name="role" required`)
			hw.attr("aria-label", inputLabel(hw, "auth.role"))
			hw.raw(`>`)
			for _, role := range rbac.All() {
				hw.raw(`<option`)
				hw.attr("value", role.String())
				if role == selected {
					hw.raw(` selected`)
				}
				hw.raw(`>`)
				hw.t("role." + role.String())
				hw.raw(`</option>`)
			}
			hw.raw(`</select>`)
		}

		hw.raw(`<button type="submit" class="btn">`)
		if register {
			hw.t("auth.register.submit")
		} else {
			hw.t("auth.login.submit")
		}
		hw.raw(`</button></form></section>`)
		return hw.err
	})
}
