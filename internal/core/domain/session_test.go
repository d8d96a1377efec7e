package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldValue_JSON(t *testing.T) {
	tests := []struct {
		name     string
		value    FieldValue
		expected string
	}{
		{"string", StringValue("HONDA"), `"HONDA"`},
		{"true", BoolValue(true), `true`},
		{"false", BoolValue(false), `false`},
		{"empty string", StringValue(""), `""`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.value)
			require.NoError(t, err)
			assert.JSONEq(t, tt.expected, string(data))

			var decoded FieldValue
			require.NoError(t, json.Unmarshal(data, &decoded))
			assert.Equal(t, tt.value, decoded)
		})
	}
}

func TestFieldValue_UnmarshalNumberAndNull(t *testing.T) {
	var v FieldValue
	require.NoError(t, json.Unmarshal([]byte(`125`), &v))
	assert.Equal(t, StringValue("125"), v)

	require.NoError(t, json.Unmarshal([]byte(`null`), &v))
	assert.Equal(t, FieldValue{}, v)

	assert.Error(t, json.Unmarshal([]byte(`{"a":1}`), &v))
}

func TestSessionDocument_RecordLastWriteWins(t *testing.T) {
	doc := NewSessionDocument()
	doc.Record("https://p/sale", "#txt_chassis_no", FieldObservation{Value: StringValue("A1"), Timestamp: 10, Type: ObservationDOMEvent})
	doc.Record("https://p/sale", "#txt_chassis_no", FieldObservation{Value: StringValue("A12"), Timestamp: 20, Type: ObservationPoll})

	page := doc.Pages["https://p/sale"]
	require.NotNil(t, page)
	assert.Len(t, page.Fields, 1)
	assert.Equal(t, "A12", page.Fields["#txt_chassis_no"].Value.String())
	assert.Equal(t, ObservationPoll, page.Fields["#txt_chassis_no"].Type)
	assert.Equal(t, int64(20), page.LastUpdated)
}

func TestSessionDocument_MergeForced(t *testing.T) {
	doc := NewSessionDocument()
	at := time.UnixMilli(5000)
	doc.MergeForced("https://p/sale", map[string]FieldValue{
		"#nic1":  StringValue("42201"),
		"#agree": BoolValue(true),
	}, at)

	page := doc.Pages["https://p/sale"]
	require.NotNil(t, page)
	assert.Equal(t, ObservationForced, page.Fields["#nic1"].Type)
	assert.Equal(t, "true", page.Fields["#agree"].Value.String())
	assert.Equal(t, int64(5000), page.LastUpdated)
	assert.Equal(t, 2, doc.FieldCount())
}

func TestSessionDocument_ResetAndClone(t *testing.T) {
	doc := NewSessionDocument()
	doc.Record("u", "#a", FieldObservation{Value: StringValue("1"), Timestamp: 1, Type: ObservationPoll})

	clone := doc.Clone()
	doc.Reset()

	assert.True(t, doc.IsEmpty())
	assert.False(t, clone.IsEmpty())
	assert.Equal(t, "1", clone.Pages["u"].Fields["#a"].Value.String())
}

func TestSessionDocument_Flatten(t *testing.T) {
	doc := NewSessionDocument()
	doc.Record("https://p/step1", "#txt_full_name", FieldObservation{Value: StringValue("MUSA"), Timestamp: 1})
	doc.Record("https://p/step2", "#txt_chassis_no", FieldObservation{Value: StringValue("CH1"), Timestamp: 2})
	// Same selector seen again on another page later: latest value, original position.
	doc.Record("https://p/step2", "#txt_full_name", FieldObservation{Value: StringValue("MUSAA"), Timestamp: 3})

	flat := doc.Flatten()

	require.Len(t, flat, 2)
	assert.Equal(t, "#txt_full_name", flat[0].Selector)
	assert.Equal(t, "MUSAA", flat[0].Value)
	assert.Equal(t, "#txt_chassis_no", flat[1].Selector)

	v, ok := flat.Get("#txt_chassis_no")
	assert.True(t, ok)
	assert.Equal(t, "CH1", v)
	_, ok = flat.Get("#missing")
	assert.False(t, ok)
}

func TestSessionDocument_JSONRoundTrip(t *testing.T) {
	doc := NewSessionDocument()
	doc.Record("https://p/sale", "#txt_full_name", FieldObservation{Value: StringValue("MUSAA"), Timestamp: 1700000000123, Type: ObservationLabelInference})
	doc.Record("https://p/sale", "#chk_insured", FieldObservation{Value: BoolValue(false), Timestamp: 1700000000200, Type: ObservationDOMEvent})
	doc.Record("https://p/other", "div#x > span:nth-of-type(2)", FieldObservation{Value: StringValue(""), Timestamp: 5, Type: ObservationMutation})

	data, err := json.Marshal(doc)
	require.NoError(t, err)

	var decoded SessionDocument
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, doc, &decoded)
}

func TestObservationType_IsValid(t *testing.T) {
	for _, tt := range []ObservationType{
		ObservationDOMEvent, ObservationMutation, ObservationPoll,
		ObservationLabelInference, ObservationForced,
	} {
		assert.True(t, tt.IsValid(), tt)
	}
	assert.False(t, ObservationType("keyboard").IsValid())
}
