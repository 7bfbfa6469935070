package model

// OddEven is the semester parity of a template.
type OddEven string

const (
	SemesterUnset OddEven = ""
	SemesterOdd   OddEven = "Odd"
	SemesterEven  OddEven = "Even"
)

// Subject is one row of a template's subject list.
type Subject struct {
	Name string `json:"name" validate:"required"`
	Code string `json:"code" validate:"required"`
}

// TemplateFields is the shared part of every marksheet created from a
// template. JSON names match the marksheet backend.
type TemplateFields struct {
	TemplateName string     `json:"templateName" validate:"required"`
	College      string     `json:"college"`
	Department   string     `json:"department"`
	TestName     string     `json:"testName"`
	Year         string     `json:"year" validate:"required"`
	OddEven      OddEven    `json:"oddEven" validate:"required,oneof=Odd Even"`
	Sem          string     `json:"sem" validate:"required"`
	Date         string     `json:"date" validate:"required"`
	ClassSem     string     `json:"classSem" validate:"required"`
	Subjects     []Subject  `json:"subjects" validate:"dive"`
	TotalMark    FlexString `json:"totalMark"`
	PassingMark  FlexString `json:"passingMark"`
	FromDate     string     `json:"fromDate"`
	ToDate       string     `json:"toDate"`
	Remarks      string     `json:"remarks"`
	TotalClass   FlexString `json:"total_class"`
	AdvisorName  string     `json:"advisorName"`
	HodName      string     `json:"hodName"`
	FromAddress  string     `json:"fromAddress"`
}

// TemplateForm is the editable template plus the class selector. Class is
// one of the user's template names and only picks the roster; it is never
// sent to the backend.
type TemplateForm struct {
	TemplateFields
	Class string `json:"class" validate:"required"`
}

// Clone returns a deep copy of the form.
func (f TemplateForm) Clone() TemplateForm {
	out := f
	if f.Subjects != nil {
		out.Subjects = make([]Subject, len(f.Subjects))
		copy(out.Subjects, f.Subjects)
	}
	return out
}

// Split separates the class selector from the fields shared by every
// marksheet.
func (f TemplateForm) Split() (className string, base TemplateFields) {
	c := f.Clone()
	return c.Class, c.TemplateFields
}
