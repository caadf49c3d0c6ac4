package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"reflect"
)

// PropertyMap holds free-form metadata persisted as JSONB.
type PropertyMap map[string]interface{}

// Value implements driver.Valuer by marshalling the map to JSONB.
func (p PropertyMap) Value() (driver.Value, error) {
	j, err := json.Marshal(p)
	return j, err
}

// Scan implements sql.Scanner by unmarshalling raw JSONB bytes.
func (p *PropertyMap) Scan(src interface{}) error {
	v := reflect.ValueOf(src)
	if !v.IsValid() || v.IsNil() {
		return nil
	}

	source, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("Type assertion .([]byte) failed.")
	}

	var i interface{}
	if err := json.Unmarshal(source, &i); err != nil {
		return err
	}
	if i == nil {
		// no properties recorded for this row
		return nil
	}

	*p, ok = i.(map[string]interface{})
	if !ok {
		return fmt.Errorf("Type assertion .(map[string]interface{}) failed.")
	}
	return nil
}
