package domain

import "time"

// Customer — минимальный профиль клиента, нужный движку: ворота допуска к
// оформлению заказов и данные для уведомлений. Учётные данные и сессии
// живут во внешнем auth-коллабораторе.
type Customer struct {
	ID        string
	Name      string
	Email     string
	Approved  bool
	CreatedAt time.Time
}

// ActorRole — роль аутентифицированного участника.
type ActorRole string

const (
	ActorRoleCustomer ActorRole = "customer"
	ActorRoleAdmin    ActorRole = "admin"
)

// Actor — непрозрачная идентичность, которую поставляет auth-коллаборатор.
type Actor struct {
	ID   string
	Name string
	Role ActorRole
}

// IsAdmin сообщает, обладает ли участник административными правами.
func (a Actor) IsAdmin() bool {
	return a.Role == ActorRoleAdmin
}
