package models

import (
	"encoding/json"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Appointment struct {
	ID          primitive.ObjectID     `bson:"_id,omitempty" json:"_id"`
	Email       string                 `bson:"email" json:"email" binding:"required,email"`
	Date        string                 `bson:"date" json:"date" binding:"required"`
	PatientName string                 `bson:"patientName,omitempty" json:"patientName,omitempty"`
	Phone       string                 `bson:"phone,omitempty" json:"phone,omitempty"`
	ServiceName string                 `bson:"serviceName,omitempty" json:"serviceName,omitempty"`
	Time        string                 `bson:"time,omitempty" json:"time,omitempty"`
	Price       float64                `bson:"price,omitempty" json:"price,omitempty"`
	Payment     *Payment               `bson:"payment,omitempty" json:"payment,omitempty"`
	Extra       map[string]interface{} `bson:",inline" json:"-"`
}

// Payment is the processor confirmation attached to an appointment after the
// client completes a charge. Amount is in minor units.
type Payment struct {
	Transaction string                 `bson:"transaction" json:"transaction" binding:"required"`
	Amount      int64                  `bson:"amount,omitempty" json:"amount,omitempty"`
	Last4       string                 `bson:"last4,omitempty" json:"last4,omitempty"`
	Created     int64                  `bson:"created,omitempty" json:"created,omitempty"`
	Extra       map[string]interface{} `bson:",inline" json:"-"`
}

var (
	appointmentKeys = []string{"_id", "email", "date", "patientName", "phone", "serviceName", "time", "price", "payment"}
	paymentKeys     = []string{"transaction", "amount", "last4", "created"}
)

type (
	appointmentAlias Appointment
	paymentAlias     Payment
)

func (a Appointment) MarshalJSON() ([]byte, error) {
	return marshalWithExtra(appointmentAlias(a), a.Extra)
}

func (a *Appointment) UnmarshalJSON(data []byte) error {
	var alias appointmentAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	extra, err := extraFields(data, appointmentKeys)
	if err != nil {
		return err
	}
	*a = Appointment(alias)
	a.Extra = extra
	return nil
}

func (p Payment) MarshalJSON() ([]byte, error) {
	return marshalWithExtra(paymentAlias(p), p.Extra)
}

func (p *Payment) UnmarshalJSON(data []byte) error {
	var alias paymentAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	extra, err := extraFields(data, paymentKeys)
	if err != nil {
		return err
	}
	*p = Payment(alias)
	p.Extra = extra
	return nil
}
