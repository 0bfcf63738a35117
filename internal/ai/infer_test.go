package ai

import (
	"testing"
)

func TestParseInferredClassification(t *testing.T) {
	cases := []struct {
		name string
		resp string
	}{
		{
			name: "bare json",
			resp: `{"project_type":"commercial","stage":"bidding","estimated_size":"large","confidence":0.85,"reasoning":"office tower"}`,
		},
		{
			name: "markdown fenced",
			resp: "```json\n{\"project_type\":\"commercial\",\"stage\":\"bidding\",\"estimated_size\":\"large\",\"confidence\":0.85}\n```",
		},
		{
			name: "leading prose",
			resp: `Here is the classification: {"project_type":"commercial","stage":"bidding","estimated_size":"large","confidence":0.85} Hope that helps!`,
		},
		{
			name: "braces inside strings",
			resp: `{"project_type":"commercial","stage":"bidding","estimated_size":"large","confidence":0.85,"reasoning":"matches {office} pattern"}`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			inferred, err := parseInferredClassification(tc.resp)
			if err != nil {
				t.Fatal(err)
			}
			if inferred.ProjectType != "commercial" {
				t.Errorf("project type = %q", inferred.ProjectType)
			}
			if inferred.Stage != "bidding" {
				t.Errorf("stage = %q", inferred.Stage)
			}
			if inferred.Confidence != 0.85 {
				t.Errorf("confidence = %v", inferred.Confidence)
			}
		})
	}
}

func TestParseInferredClassificationErrors(t *testing.T) {
	cases := []struct {
		name string
		resp string
	}{
		{"empty", ""},
		{"no json", "I cannot classify this project."},
		{"truncated", `{"project_type":"commercial","stage":`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := parseInferredClassification(tc.resp); err == nil {
				t.Error("expected parse error")
			}
		})
	}
}

func TestExtractFirstJSONObject(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{"simple", `prefix {"a":1} suffix`, `{"a":1}`, true},
		{"nested", `{"a":{"b":2}}`, `{"a":{"b":2}}`, true},
		{"brace in string", `{"a":"}"}`, `{"a":"}"}`, true},
		{"escaped quote", `{"a":"\"}"}`, `{"a":"\"}"}`, true},
		{"unbalanced", `{"a":1`, "", false},
		{"no object", "plain text", "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := extractFirstJSONObject(tc.in)
			if ok != tc.ok || got != tc.want {
				t.Errorf("got (%q, %v), want (%q, %v)", got, ok, tc.want, tc.ok)
			}
		})
	}
}
