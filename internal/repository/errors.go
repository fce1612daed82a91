package repository

import "errors"

var (
	ErrSessionNotFound     = errors.New("session not found")
	ErrRoomNotFound        = errors.New("room not found")
	ErrParticipantNotFound = errors.New("participant not found")
	ErrInviteNotFound      = errors.New("invite not found")
	ErrInviteTokenExists   = errors.New("invite token already exists")
	ErrMessageNotFound     = errors.New("message not found")
	ErrDuplicateMessage    = errors.New("message with external id already exists")
)
