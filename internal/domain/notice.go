package domain

import (
	"encoding/json"
	"time"
)

type ObjectType string

const (
	ObjectGood       ObjectType = "Bien"
	ObjectService    ObjectType = "Servicio"
	ObjectWork       ObjectType = "Obra"
	ObjectConsulting ObjectType = "Consultoría"
	ObjectOther      ObjectType = "Otro"
)

// RegionUnidentified is assigned when no department can be inferred.
const RegionUnidentified = "NO IDENTIFICADO"

// Secondary-code (CUBSO) sentinels. They stand in for a value, they are not errors.
const (
	CodeNotFound   = "No encontrado"
	CodeNoLink     = "No enlace"
	CodeFetchError = "Error"
)

const (
	DateLayout     = "02/01/2006"
	DateTimeLayout = "02/01/2006 15:04:05"
)

// Notice is one procurement notice read from a listing card.
type Notice struct {
	Code        string
	Entity      string
	Description string
	ObjectType  ObjectType
	Region      string

	PublishedAt time.Time
	// HasTime is true when the card carried an HH:MM component next to the date.
	HasTime bool

	ScheduleStart *time.Time
	ScheduleEnd   *time.Time

	Link          string
	SecondaryCode string
}

type noticeJSON struct {
	Code          string     `json:"codigo"`
	Entity        string     `json:"entidad"`
	Description   string     `json:"descripcion"`
	ObjectType    ObjectType `json:"tipo"`
	Region        string     `json:"region"`
	PublishedAt   string     `json:"fecha_publicacion"`
	ScheduleStart string     `json:"fecha_inicio,omitempty"`
	ScheduleEnd   string     `json:"fecha_fin,omitempty"`
	Link          string     `json:"enlace"`
	SecondaryCode string     `json:"cubso,omitempty"`
}

// MarshalJSON keeps the wire names the SEACE consumers already rely on.
func (n Notice) MarshalJSON() ([]byte, error) {
	out := noticeJSON{
		Code:          n.Code,
		Entity:        n.Entity,
		Description:   n.Description,
		ObjectType:    n.ObjectType,
		Region:        n.Region,
		PublishedAt:   n.PublishedLabel(),
		Link:          n.Link,
		SecondaryCode: n.SecondaryCode,
	}
	if n.ScheduleStart != nil {
		out.ScheduleStart = n.ScheduleStart.Format(DateLayout)
	}
	if n.ScheduleEnd != nil {
		out.ScheduleEnd = n.ScheduleEnd.Format(DateLayout)
	}
	return json.Marshal(out)
}

func (n Notice) PublishedLabel() string {
	if n.PublishedAt.IsZero() {
		return ""
	}
	if n.HasTime {
		return n.PublishedAt.Format(DateTimeLayout)
	}
	return n.PublishedAt.Format(DateLayout)
}
