package models

import "strings"

// Sport is an entry of the fixed sport table
type Sport struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	TypeID string `json:"typeId"`
}

// Sports is the process-wide sport table. Do not modify.
var Sports = []Sport{
	{ID: "cricket", Name: "Cricket", TypeID: "4"},
	{ID: "football", Name: "Football", TypeID: "1"},
	{ID: "tennis", Name: "Tennis", TypeID: "2"},
}

// SportByName looks up a sport by its identifier, case-insensitively
func SportByName(name string) (Sport, bool) {
	for _, s := range Sports {
		if strings.EqualFold(s.ID, name) {
			return s, true
		}
	}
	return Sport{}, false
}

// SportTagForType maps an upstream event type code to a sport tag
func SportTagForType(typeID string) string {
	switch typeID {
	case "1":
		return "football"
	case "2":
		return "tennis"
	case "4":
		return "cricket"
	default:
		return "unknown"
	}
}
