// Package entities is the read-only directory of legal entities that
// resolutions are issued for.
package entities

import "resolution-backend/internal/values"

// Entity is one directory record.
type Entity struct {
	ID            string `json:"id" yaml:"id"`
	LegalName     string `json:"legalName" yaml:"legalName"`
	ShortName     string `json:"shortName" yaml:"shortName"`
	Jurisdiction  string `json:"jurisdiction" yaml:"jurisdiction"`
	TaxID         string `json:"taxId" yaml:"taxId"`
	EffectiveDate string `json:"effectiveDate" yaml:"effectiveDate"`
	Status        string `json:"status" yaml:"status"`
	Address       string `json:"address" yaml:"address"`
	Email         string `json:"email" yaml:"email"`
}

// ToValue converts the record into an object value so templates can read
// fields such as entity.legalName.
func (e Entity) ToValue() values.Value {
	return values.Object(map[string]values.Value{
		"id":            values.String(e.ID),
		"legalName":     values.String(e.LegalName),
		"shortName":     values.String(e.ShortName),
		"jurisdiction":  values.String(e.Jurisdiction),
		"taxId":         values.String(e.TaxID),
		"effectiveDate": values.String(e.EffectiveDate),
		"status":        values.String(e.Status),
		"address":       values.String(e.Address),
		"email":         values.String(e.Email),
	})
}
