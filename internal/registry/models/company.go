// Package models holds the registry records exchanged with the GCIS open
// data API. Records are open-ended upstream, so each type keeps the fields the
// traversal needs as typed values and carries every other field verbatim in
// Extra.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Registry field names.
const (
	FieldBusinessAccountingNO  = "Business_Accounting_NO"
	FieldCompanyName           = "Company_Name"
	FieldResponsibleName       = "Responsible_Name"
	FieldCapitalStockAmount    = "Capital_Stock_Amount"
	FieldAdditionalData        = "additional_data"
	FieldPersonPositionName    = "Person_Position_Name"
	FieldPersonName            = "Person_Name"
	FieldJuristicPersonName    = "Juristic_Person_Name"
	FieldJuristicPersonCompany = "juristic_person_company"
)

// Company is one registry record. AdditionalData and CapitalStockAmount are
// attached during traversal; a nil CapitalStockAmount means the amount could
// not be determined.
type Company struct {
	BusinessAccountingNO string
	CompanyName          string
	ResponsibleName      string
	CapitalStockAmount   *json.Number
	AdditionalData       []*Shareholder
	Extra                map[string]json.RawMessage
}

// Shareholder is one line of a company's shareholder/representative
// disclosure. JuristicPersonName is set only when the shareholder is itself
// a juristic person.
type Shareholder struct {
	PositionName          string
	PersonName            string
	JuristicPersonName    string
	JuristicPersonCompany *Company
	Extra                 map[string]json.RawMessage
}

// UnmarshalJSON decodes a raw registry record, keeping unknown fields.
func (c *Company) UnmarshalJSON(data []byte) error {
	fields, err := decodeObject(data)
	if err != nil {
		return fmt.Errorf("decode company: %w", err)
	}
	*c = Company{}
	if c.BusinessAccountingNO, err = takeString(fields, FieldBusinessAccountingNO); err != nil {
		return err
	}
	if c.CompanyName, err = takeString(fields, FieldCompanyName); err != nil {
		return err
	}
	if c.ResponsibleName, err = takeString(fields, FieldResponsibleName); err != nil {
		return err
	}
	if c.CapitalStockAmount, err = takeNumber(fields, FieldCapitalStockAmount); err != nil {
		return err
	}
	if raw, ok := fields[FieldAdditionalData]; ok {
		delete(fields, FieldAdditionalData)
		if !isNull(raw) {
			if err := json.Unmarshal(raw, &c.AdditionalData); err != nil {
				return fmt.Errorf("decode %s: %w", FieldAdditionalData, err)
			}
		}
	}
	c.Extra = nonEmpty(fields)
	return nil
}

// MarshalJSON writes the record back in registry shape. additional_data is
// always an array and Capital_Stock_Amount is null when absent.
func (c Company) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(c.Extra)+5)
	for k, v := range c.Extra {
		out[k] = v
	}
	out[FieldBusinessAccountingNO] = c.BusinessAccountingNO
	out[FieldCompanyName] = c.CompanyName
	if c.ResponsibleName != "" {
		out[FieldResponsibleName] = c.ResponsibleName
	}
	out[FieldCapitalStockAmount] = c.CapitalStockAmount
	additional := c.AdditionalData
	if additional == nil {
		additional = []*Shareholder{}
	}
	out[FieldAdditionalData] = additional
	return json.Marshal(out)
}

// UnmarshalJSON decodes a raw shareholder entry, keeping unknown fields.
func (s *Shareholder) UnmarshalJSON(data []byte) error {
	fields, err := decodeObject(data)
	if err != nil {
		return fmt.Errorf("decode shareholder: %w", err)
	}
	*s = Shareholder{}
	if s.PositionName, err = takeString(fields, FieldPersonPositionName); err != nil {
		return err
	}
	if s.PersonName, err = takeString(fields, FieldPersonName); err != nil {
		return err
	}
	if s.JuristicPersonName, err = takeString(fields, FieldJuristicPersonName); err != nil {
		return err
	}
	if raw, ok := fields[FieldJuristicPersonCompany]; ok {
		delete(fields, FieldJuristicPersonCompany)
		if !isNull(raw) {
			s.JuristicPersonCompany = &Company{}
			if err := json.Unmarshal(raw, s.JuristicPersonCompany); err != nil {
				return fmt.Errorf("decode %s: %w", FieldJuristicPersonCompany, err)
			}
		}
	}
	s.Extra = nonEmpty(fields)
	return nil
}

// MarshalJSON writes the entry back in registry shape.
func (s Shareholder) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(s.Extra)+4)
	for k, v := range s.Extra {
		out[k] = v
	}
	if s.PositionName != "" {
		out[FieldPersonPositionName] = s.PositionName
	}
	if s.PersonName != "" {
		out[FieldPersonName] = s.PersonName
	}
	if s.JuristicPersonName != "" {
		out[FieldJuristicPersonName] = s.JuristicPersonName
	}
	if s.JuristicPersonCompany != nil {
		out[FieldJuristicPersonCompany] = s.JuristicPersonCompany
	}
	return json.Marshal(out)
}

// IsJuristic reports whether the entry names a juristic person.
func (s *Shareholder) IsJuristic() bool {
	return s.JuristicPersonName != ""
}

func decodeObject(data []byte) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]json.RawMessage{}
	}
	return fields, nil
}

// takeString removes key from fields and decodes it as a string. Numbers are
// accepted and kept in their literal form; upstream is not consistent about
// quoting identifiers.
func takeString(fields map[string]json.RawMessage, key string) (string, error) {
	raw, ok := fields[key]
	if !ok {
		return "", nil
	}
	delete(fields, key)
	raw = bytes.TrimSpace(raw)
	if isNull(raw) {
		return "", nil
	}
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", fmt.Errorf("decode %s: %w", key, err)
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("decode %s: expected string, got %s", key, raw)
	}
	return n.String(), nil
}

// takeNumber removes key from fields and decodes it as a number. Empty strings
// and null decode to nil.
func takeNumber(fields map[string]json.RawMessage, key string) (*json.Number, error) {
	raw, ok := fields[key]
	if !ok {
		return nil, nil
	}
	delete(fields, key)
	raw = bytes.TrimSpace(raw)
	if isNull(raw) || bytes.Equal(raw, []byte(`""`)) {
		return nil, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return &n, nil
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func nonEmpty(fields map[string]json.RawMessage) map[string]json.RawMessage {
	if len(fields) == 0 {
		return nil
	}
	return fields
}
