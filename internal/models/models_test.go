package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "2024-01-01", want: "2024-01-01"},
		{in: " 2024-01-01 ", want: "2024-01-01"},
		{in: "2024-01-01T23:30:00-05:00", want: "2024-01-01"},
		{in: "2024-01-01T10:00:00.000Z", want: "2024-01-01"},
		{in: "1/2/2024", want: "2024-01-02"},
		{in: "12/31/2023", want: "2023-12-31"},
		{in: "Mon Jan 01 2024", want: "2024-01-01"},
		{in: "", wantErr: true},
		{in: "yesterday", wantErr: true},
		{in: "2024-13-01", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizeDate(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidDate)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAppointmentJSONKeepsUnknownFields(t *testing.T) {
	body := `{"email":"a@x.com","date":"2024-01-01","serviceName":"Teeth Orthodontics","price":25,"doctor":"Dr. Who","$where":"1","a.b":2}`

	var apt Appointment
	require.NoError(t, json.Unmarshal([]byte(body), &apt))

	assert.Equal(t, "a@x.com", apt.Email)
	assert.Equal(t, "Teeth Orthodontics", apt.ServiceName)
	assert.Equal(t, float64(25), apt.Price)
	assert.Equal(t, map[string]interface{}{"doctor": "Dr. Who"}, apt.Extra)

	out, err := json.Marshal(apt)
	require.NoError(t, err)

	var flat map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &flat))
	assert.Equal(t, "Dr. Who", flat["doctor"])
	assert.Equal(t, "2024-01-01", flat["date"])
	assert.NotContains(t, flat, "$where")
}

func TestAppointmentTypedFieldsWinOnMarshal(t *testing.T) {
	apt := Appointment{Email: "a@x.com", Date: "2024-01-01", Extra: map[string]interface{}{"email": "spoof@x.com"}}

	out, err := json.Marshal(apt)
	require.NoError(t, err)

	var flat map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &flat))
	assert.Equal(t, "a@x.com", flat["email"])
}

func TestPaymentExtraFields(t *testing.T) {
	var p Payment
	require.NoError(t, json.Unmarshal([]byte(`{"transaction":"pi_1","amount":5000,"last4":"4242","brand":"visa"}`), &p))

	assert.Equal(t, "pi_1", p.Transaction)
	assert.Equal(t, int64(5000), p.Amount)
	assert.Equal(t, map[string]interface{}{"brand": "visa"}, p.Extra)
}

func TestUserBSONInlinesExtra(t *testing.T) {
	u := User{Email: "u@x.com", DisplayName: "U", Extra: map[string]interface{}{"photoURL": "http://img"}}

	raw, err := bson.Marshal(u)
	require.NoError(t, err)

	var doc bson.M
	require.NoError(t, bson.Unmarshal(raw, &doc))
	assert.Equal(t, "http://img", doc["photoURL"])
	assert.NotContains(t, doc, "role")
	assert.NotContains(t, doc, "_id")

	var back User
	require.NoError(t, bson.Unmarshal(raw, &back))
	assert.Equal(t, "http://img", back.Extra["photoURL"])
}

func TestEffectiveRole(t *testing.T) {
	assert.Equal(t, RoleNone, User{}.EffectiveRole())
	assert.Equal(t, RoleAdmin, User{Role: RoleAdmin}.EffectiveRole())
	assert.True(t, RoleAdmin.IsAdmin())
	assert.False(t, RoleNone.IsAdmin())
}

func TestProfileWriteCannotCarryRole(t *testing.T) {
	for _, key := range []string{"role", "Role", "ROLE"} {
		t.Run(key, func(t *testing.T) {
			var u User
			require.NoError(t, json.Unmarshal([]byte(`{"email":"me@x.com","`+key+`":"Admin","photoURL":"http://img"}`), &u))
			assert.NotContains(t, u.Extra, key)

			// the store clears the typed role on every profile write
			u.Role = ""

			raw, err := bson.Marshal(u)
			require.NoError(t, err)

			var doc bson.M
			require.NoError(t, bson.Unmarshal(raw, &doc))
			assert.Len(t, doc, 2)
			assert.Equal(t, "http://img", doc["photoURL"])

			var back User
			require.NoError(t, bson.Unmarshal(raw, &back))
			assert.Equal(t, RoleNone, back.EffectiveRole())
		})
	}
}

func TestAppointmentCannotCarryPaymentInExtra(t *testing.T) {
	body := `{"email":"a@x.com","date":"2024-01-01","Payment":{"transaction":"pi_fake"},"PAYMENT":{"transaction":"pi_fake2"}}`

	var apt Appointment
	require.NoError(t, json.Unmarshal([]byte(body), &apt))
	assert.Nil(t, apt.Extra)

	apt.Payment = nil
	raw, err := bson.Marshal(apt)
	require.NoError(t, err)

	var back Appointment
	require.NoError(t, bson.Unmarshal(raw, &back))
	assert.Nil(t, back.Payment)
	assert.Equal(t, "a@x.com", back.Email)
}
