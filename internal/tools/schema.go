package tools

import "time"

func nowMillis() int64 { return time.Now().UnixMilli() }

// objectSchema builds the JSON-Schema "object" wrapper the realtime
// service's tool catalog expects for every tool's parameters field,
// matching the flat {name, type:"function", parameters, description}
// shape described for session.update's tool catalog.
func objectSchema(properties map[string]any, required ...string) map[string]any {
	if properties == nil {
		properties = map[string]any{}
	}
	return map[string]any{
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
}

func numberProp(description string, minimum, maximum *float64) map[string]any {
	p := map[string]any{"type": "number", "description": description}
	if minimum != nil {
		p["minimum"] = *minimum
	}
	if maximum != nil {
		p["maximum"] = *maximum
	}
	return p
}

func integerProp(description string, minimum, maximum *int) map[string]any {
	p := map[string]any{"type": "integer", "description": description}
	if minimum != nil {
		p["minimum"] = *minimum
	}
	if maximum != nil {
		p["maximum"] = *maximum
	}
	return p
}

func stringProp(description string, enum ...string) map[string]any {
	p := map[string]any{"type": "string", "description": description}
	if len(enum) > 0 {
		p["enum"] = enum
	}
	return p
}

func arrayOfStringsProp(description string) map[string]any {
	return map[string]any{"type": "array", "description": description, "items": map[string]any{"type": "string"}}
}

func f(v float64) *float64 { return &v }
func n(v int) *int         { return &v }
