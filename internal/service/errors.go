package service

import "errors"

// Пользовательская таксономия ошибок. Авторизация и валидация
// выполняются здесь, до записи; слой HTTP только переводит эти
// ошибки в статусы и не перепроверяет права.
var (
	ErrNotMember           = errors.New("not a member of this group")
	ErrNotAdmin            = errors.New("admin role required")
	ErrNotOwner            = errors.New("group owner required")
	ErrAlreadyMember       = errors.New("already a member of this group")
	ErrGroupNotFound       = errors.New("group not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrInviteCodeExhausted = errors.New("invite code generation exhausted, retry later")
	ErrSlotBusy            = errors.New("slot conflicts with a calendar event")
	ErrInvalidWindow       = errors.New("invalid display window")
	ErrStaleSync           = errors.New("calendar sync result is stale")
)
