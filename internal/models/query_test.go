package models

import (
	"testing"
)

func TestAskRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     *AskRequest
		want    string
		wantErr bool
	}{
		{"empty query", &AskRequest{Query: ""}, "", true},
		{"blank query", &AskRequest{Query: " \t\n"}, "", true},
		{"valid query", &AskRequest{Query: "hello"}, "hello", false},
		{"trims query", &AskRequest{Query: "  who is michael  "}, "who is michael", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && tt.req.Query != tt.want {
				t.Errorf("Query = %q, want %q", tt.req.Query, tt.want)
			}
		})
	}
}
