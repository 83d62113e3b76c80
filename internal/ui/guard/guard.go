// Пакет guard — решение о доступе к маршруту UI по сессии.
// Decide — чистая функция: без I/O, без логирования, без состояния.
package guard

import (
	"github.com/bigkaa/medhistory/portal-module/internal/domain/model"
	"github.com/bigkaa/medhistory/portal-module/internal/domain/rbac"
)

// Requirement — требование маршрута к сессии.
// Нулевое значение — публичный маршрут.
type Requirement struct {
	role rbac.Role
}

// Public — маршрут доступен без сессии.
func Public() Requirement {
	return Requirement{}
}

// RequireRole — маршрут доступен только сессии с ролью role.
func RequireRole(role rbac.Role) Requirement {
	return Requirement{role: role}
}

// IsPublic сообщает, что маршрут публичный.
func (r Requirement) IsPublic() bool {
	return r.role == rbac.RoleNone
}

// Role возвращает требуемую роль (RoleNone для публичного маршрута).
func (r Requirement) Role() rbac.Role {
	return r.role
}

// Decision — результат проверки: показать страницу или перенаправить.
type Decision struct {
	// Redirect — путь перенаправления; пустой — страницу можно показать.
	Redirect string
}

// Render сообщает, что страницу можно показать.
func (d Decision) Render() bool {
	return d.Redirect == ""
}

// Decide решает, можно ли показать маршрут с требованием req для session.
//
//	пустая сессия, нужна роль R      → redirect на публичную точку входа
//	роль сессии ≠ R                  → redirect на страницу роли сессии
//	роль сессии = R или маршрут публичный → показать
func Decide(session model.Session, req Requirement) Decision {
	if req.IsPublic() {
		return Decision{}
	}
	if !session.IsComplete() {
		return Decision{Redirect: rbac.RoutePublic}
	}
	if session.Role != req.role {
		return Decision{Redirect: rbac.DefaultRoute(session.Role)}
	}
	return Decision{}
}

// ResolveDashboard возвращает путь, на который ведёт /dashboard:
// страница роли для активной сессии, публичная точка входа иначе.
func ResolveDashboard(session model.Session) string {
	if !session.IsComplete() {
		return rbac.RoutePublic
	}
	return rbac.DefaultRoute(session.Role)
}
