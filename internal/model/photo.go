package model

import "time"

// Photo is the metadata of an uploaded image. StoragePath is relative to the
// upload root, in forward-slash form, and is the only record of where the bytes live.
type Photo struct {
	ID           string `json:"id"`
	Filename     string `json:"filename"`
	OriginalName string `json:"originalName"`
	StoragePath  string `json:"storagePath"`
	MimeType     string `json:"mimeType"`
	Size         int64  `json:"size"`
	Day          int    `json:"day"`
	PhaseIndex   int    `json:"phaseIndex"`
	ModuleID     string `json:"moduleId"`
	// ParticipantIDs are the stored references. They are not rendered directly:
	// the API exposes the expanded documents under "participantIds".
	ParticipantIDs []string      `json:"-"`
	Participants   []Participant `json:"participantIds"`
	Caption        string        `json:"caption"`
	Notes          string        `json:"notes"`
	URL            string        `json:"url,omitempty"`
	CreatedAt      time.Time     `json:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt"`
}

// PhotoLocation identifies where in the workshop a photo was taken.
type PhotoLocation struct {
	Day        int
	PhaseIndex int
	ModuleID   string
}

// PhotoFilter holds optional equality filters for listing photos.
// Nil / empty fields do not filter.
type PhotoFilter struct {
	Day      *int
	ModuleID string
}
