package openweather

import (
	"errors"
	"strings"
	"testing"
)

func TestDecodeGeocode(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    int
		wantErr bool
	}{
		{name: "single", body: `[{"name":"Berlin","lat":52.52,"lon":13.405,"country":"DE"}]`, want: 1},
		{name: "empty", body: `[]`, want: 0},
		{name: "two candidates", body: `[{"name":"Paris","lat":48.85,"lon":2.35},{"name":"Paris","lat":33.66,"lon":-95.55}]`, want: 2},
		{name: "object instead of list", body: `{"cod":"400","message":"bad"}`, wantErr: true},
		{name: "missing lat", body: `[{"name":"Berlin","lon":13.405}]`, wantErr: true},
		{name: "not json", body: `<html>`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeGeocode([]byte(tt.body))
			if tt.wantErr {
				if !errors.Is(err, ErrMalformedPayload) {
					t.Errorf("DecodeGeocode() error = %v, want ErrMalformedPayload", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeGeocode() unexpected error: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("len(DecodeGeocode()) = %d, want %d", len(got), tt.want)
			}
		})
	}
}

func TestDecodeOneCall_Validation(t *testing.T) {
	valid := `{"dt":1,"summary":"s","temp":{"day":1,"min":0,"max":2},"clouds":5,"uvi":1}`
	tests := []struct {
		name        string
		body        string
		wantMissing string
	}{
		{name: "valid", body: `{"timezone_offset":0,"daily":[` + valid + `]}`},
		{name: "valid empty daily", body: `{"timezone_offset":0,"daily":[]}`},
		{name: "no offset", body: `{"daily":[]}`, wantMissing: "timezone_offset"},
		{name: "no daily", body: `{"timezone_offset":3600}`, wantMissing: "daily"},
		{name: "no dt", body: `{"timezone_offset":0,"daily":[{"summary":"s","temp":{"day":1,"min":0,"max":2},"clouds":5,"uvi":1}]}`, wantMissing: "daily[0].dt"},
		{name: "no summary", body: `{"timezone_offset":0,"daily":[` + valid + `,{"dt":1,"temp":{"day":1,"min":0,"max":2},"clouds":5,"uvi":1}]}`, wantMissing: "daily[1].summary"},
		{name: "no temp max", body: `{"timezone_offset":0,"daily":[{"dt":1,"summary":"s","temp":{"day":1,"min":0},"clouds":5,"uvi":1}]}`, wantMissing: "temp.max"},
		{name: "no uvi", body: `{"timezone_offset":0,"daily":[{"dt":1,"summary":"s","temp":{"day":1,"min":0,"max":2},"clouds":5}]}`, wantMissing: "uvi"},
		{name: "wrong type", body: `{"timezone_offset":"UTC","daily":[]}`, wantMissing: "onecall"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeOneCall([]byte(tt.body))
			if tt.wantMissing == "" {
				if err != nil {
					t.Fatalf("DecodeOneCall() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, ErrMalformedPayload) {
				t.Fatalf("DecodeOneCall() error = %v, want ErrMalformedPayload", err)
			}
			if !strings.Contains(err.Error(), tt.wantMissing) {
				t.Errorf("error %q does not mention %q", err, tt.wantMissing)
			}
		})
	}
}

func TestOneCallResponse_Records(t *testing.T) {
	resp, err := DecodeOneCall([]byte(oneCallFixture))
	if err != nil {
		t.Fatalf("DecodeOneCall: %v", err)
	}
	records := resp.Records()
	if len(records) != 2 {
		t.Fatalf("len(records) = %d, want 2", len(records))
	}
	if records[0].Rain == nil || *records[0].Rain != 4.2 {
		t.Errorf("records[0].Rain = %v, want 4.2", records[0].Rain)
	}
	if records[1].Rain != nil {
		t.Errorf("records[1].Rain = %v, want nil", *records[1].Rain)
	}
	if records[0].Temperature.Max != 16.8 || records[0].Clouds != 90 || records[0].UVI != 1.3 {
		t.Errorf("records[0] = %+v", records[0])
	}
}
