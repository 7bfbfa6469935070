package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexStringEncoding(t *testing.T) {
	cases := []struct {
		in   FlexString
		want string
	}{
		{"100", `100`},
		{"-2.5", `-2.5`},
		{"", `""`},
		{"21IT07", `"21IT07"`},
		{"007", `"007"`},
		{"Inf", `"Inf"`},
	}
	for _, tc := range cases {
		got, err := json.Marshal(tc.in)
		require.NoError(t, err)
		assert.Equal(t, tc.want, string(got), "input %q", tc.in)
	}
}

func TestFlexStringDecoding(t *testing.T) {
	var s struct {
		A FlexString `json:"a"`
		B FlexString `json:"b"`
		C FlexString `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a": 42, "b": "x1", "c": null}`), &s))
	assert.Equal(t, FlexString("42"), s.A)
	assert.Equal(t, FlexString("x1"), s.B)
	assert.Equal(t, FlexString(""), s.C)

	assert.Error(t, json.Unmarshal([]byte(`{"a": true}`), &s))
}

func TestMarksheetCreateRequestOmitsClass(t *testing.T) {
	form := TemplateForm{
		TemplateFields: TemplateFields{
			TemplateName: "PT1",
			Subjects:     []Subject{{Name: "Networks", Code: "IT501"}},
			TotalMark:    FlexInt(100),
		},
		Class: "III IT A",
	}
	className, base := form.Split()
	assert.Equal(t, "III IT A", className)

	req := NewMarksheetCreateRequest(base, Student{Name: "Anu", Address: "12 Main St", RollNo: RollNoString("17")})
	raw, err := json.Marshal(req)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.NotContains(t, decoded, "class")
	assert.Equal(t, "PT1", decoded["templateName"])
	assert.Equal(t, "Anu", decoded["stu_name"])
	assert.Equal(t, "12 Main St", decoded["toAddress"])
	assert.Equal(t, "17", decoded["rollno"])
	assert.Equal(t, float64(100), decoded["totalMark"])
	assert.Equal(t, "", decoded["total_class"])
}

func TestRollNoKeepsBackendEncoding(t *testing.T) {
	cases := []struct {
		body string
		want any
		text string
	}{
		{`{"name":"Anu","rollno":"17"}`, "17", "17"},
		{`{"name":"Anu","rollno":17}`, float64(17), "17"},
		{`{"name":"Anu","rollno":"21IT07"}`, "21IT07", "21IT07"},
		{`{"name":"Anu","rollno":null}`, nil, ""},
	}
	for _, tc := range cases {
		var st Student
		require.NoError(t, json.Unmarshal([]byte(tc.body), &st))
		assert.Equal(t, tc.text, st.RollNo.String(), tc.body)

		raw, err := json.Marshal(NewMarksheetCreateRequest(TemplateFields{}, st))
		require.NoError(t, err)
		var decoded map[string]any
		require.NoError(t, json.Unmarshal(raw, &decoded))
		assert.Equal(t, tc.want, decoded["rollno"], tc.body)
	}
}

func TestRollNoMissing(t *testing.T) {
	var st Student
	require.NoError(t, json.Unmarshal([]byte(`{"name":"Anu"}`), &st))
	assert.Equal(t, "", st.RollNo.String())

	raw, err := json.Marshal(StudentOutcome{RollNo: st.RollNo})
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"rollno":null`)
}

func TestCloneIsDeep(t *testing.T) {
	form := TemplateForm{TemplateFields: TemplateFields{Subjects: []Subject{{Name: "A"}}}}
	c := form.Clone()
	c.Subjects[0].Name = "B"
	assert.Equal(t, "A", form.Subjects[0].Name)
}
