package domain

// PermissionLevel представляет уровень доступа пользователя к ресурсу
type PermissionLevel string

// Уровни доступа, упорядоченные по убыванию привилегий
const (
	PermissionAdmin      PermissionLevel = "admin"       // Глобальный owner/admin
	PermissionTeamLeader PermissionLevel = "team_leader" // Лидер назначенной команды
	PermissionMember     PermissionLevel = "member"      // Прямое или командное назначение
	PermissionNone       PermissionLevel = "none"        // Нет доступа
)

// permissionRank задает строгий порядок уровней: admin > team_leader > member > none
var permissionRank = map[PermissionLevel]int{
	PermissionAdmin:      3,
	PermissionTeamLeader: 2,
	PermissionMember:     1,
	PermissionNone:       0,
}

// AtLeast возвращает true если уровень не ниже требуемого
func (p PermissionLevel) AtLeast(floor PermissionLevel) bool {
	return permissionRank[p] >= permissionRank[floor]
}
