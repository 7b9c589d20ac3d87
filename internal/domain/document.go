package domain

import "time"

type Document struct {
	Id         DocumentId `json:"id"`
	OwnerId    UserId     `json:"ownerId"`
	Title      string     `json:"title"`
	Content    string     `json:"content"` // opaque JSON, rendered elsewhere
	Visibility Visibility `json:"visibility"`
	AllowAudit bool       `json:"allowAudit"`
	Alias      string     `json:"alias,omitempty"`
	Featured   bool       `json:"featured"`
	Created    time.Time  `json:"created"`
	Updated    time.Time  `json:"updated"`
}
