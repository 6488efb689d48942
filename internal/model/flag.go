package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// parseFlag reads a boolean the backend may store as true/false, 0/1 or
// null.
func parseFlag(raw json.RawMessage) (bool, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return false, nil
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b, nil
	}
	n, err := strconv.ParseFloat(string(raw), 64)
	if err != nil {
		return false, fmt.Errorf("invalid boolean %s", raw)
	}
	return n != 0, nil
}

// UnmarshalJSON accepts is_default as a bool or an integer.
func (c *Category) UnmarshalJSON(data []byte) error {
	type plain Category
	aux := struct {
		*plain
		IsDefault json.RawMessage `json:"is_default"`
	}{plain: (*plain)(c)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	v, err := parseFlag(aux.IsDefault)
	if err != nil {
		return fmt.Errorf("category is_default: %w", err)
	}
	c.IsDefault = v
	return nil
}

// UnmarshalJSON accepts use_ssl as a bool or an integer.
func (a *MailAccount) UnmarshalJSON(data []byte) error {
	type plain MailAccount
	aux := struct {
		*plain
		UseSSL json.RawMessage `json:"use_ssl"`
	}{plain: (*plain)(a)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	v, err := parseFlag(aux.UseSSL)
	if err != nil {
		return fmt.Errorf("mail account use_ssl: %w", err)
	}
	a.UseSSL = v
	return nil
}
