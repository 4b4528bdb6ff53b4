package trigger

import (
	"encoding/json"
	"fmt"
)

func encodeJSON(value interface{}) ([]byte, error) {
	payload, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("encode trigger payload: %w", err)
	}
	return payload, nil
}

func encodeStringSet(values []string) ([]byte, error) {
	if values == nil {
		values = []string{}
	}
	return encodeJSON(values)
}

func decodeStringSet(raw []byte) ([]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var values []string
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, nil
	}
	return values, nil
}

// Decode resolves a serialized store row into a full trigger.
func Decode(row Row) (Trigger, error) {
	var responses []Response
	if err := json.Unmarshal(row.Responses, &responses); err != nil {
		return Trigger{}, fmt.Errorf("decode responses for trigger %s: %w", row.ID, err)
	}
	if len(responses) == 0 {
		return Trigger{}, fmt.Errorf("trigger %s has no responses", row.ID)
	}
	channels, err := decodeStringSet(row.Channels)
	if err != nil {
		return Trigger{}, fmt.Errorf("decode channels for trigger %s: %w", row.ID, err)
	}
	roles, err := decodeStringSet(row.Roles)
	if err != nil {
		return Trigger{}, fmt.Errorf("decode roles for trigger %s: %w", row.ID, err)
	}
	blacklist, err := decodeStringSet(row.Blacklist)
	if err != nil {
		return Trigger{}, fmt.Errorf("decode blacklist for trigger %s: %w", row.ID, err)
	}
	whitelist, err := decodeStringSet(row.Whitelist)
	if err != nil {
		return Trigger{}, fmt.Errorf("decode whitelist for trigger %s: %w", row.ID, err)
	}
	return Trigger{
		ID:              row.ID,
		Pattern:         row.Pattern,
		MatchType:       row.MatchType,
		CaseSensitive:   row.CaseSensitive,
		Responses:       responses,
		CooldownSeconds: row.CooldownSeconds,
		Channels:        channels,
		Roles:           roles,
		Blacklist:       blacklist,
		Whitelist:       whitelist,
		CreatorID:       row.CreatorID,
		CreatedAt:       row.CreatedAt,
	}, nil
}
