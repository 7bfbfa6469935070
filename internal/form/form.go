// Package form holds template drafts and their field-level mutations.
package form

import (
	"errors"
	"fmt"

	"github.com/stemsi/marksheet-builder/internal/config"
	"github.com/stemsi/marksheet-builder/internal/model"
)

var (
	ErrUnknownField  = errors.New("unknown field")
	ErrInvalidNumber = errors.New("value must be a number")
	ErrSubjectIndex  = errors.New("subject index out of range")
)

// Form is a mutable template draft. It is not safe for concurrent use;
// Store serializes access.
type Form struct {
	data model.TemplateForm
}

// New returns a form populated with the configured defaults and a single
// empty subject row.
func New(d config.FormDefaults) *Form {
	return &Form{data: model.TemplateForm{
		TemplateFields: model.TemplateFields{
			College:     d.College,
			Department:  d.Department,
			TestName:    d.TestName,
			Subjects:    []model.Subject{{}},
			TotalMark:   model.FlexInt(d.TotalMark),
			PassingMark: model.FlexInt(d.PassingMark),
			Remarks:     d.Remarks,
			FromAddress: d.FromAddress,
		},
	}}
}

// FromTemplate wraps an existing record.
func FromTemplate(t model.TemplateForm) *Form {
	return &Form{data: t.Clone()}
}

// Snapshot returns a deep copy of the current record.
func (f *Form) Snapshot() model.TemplateForm {
	return f.data.Clone()
}

// SetField merges value into the top-level field with the given wire name.
func (f *Form) SetField(name, value string) error {
	d := &f.data
	switch name {
	case "templateName":
		d.TemplateName = value
	case "college":
		d.College = value
	case "department":
		d.Department = value
	case "testName":
		d.TestName = value
	case "year":
		d.Year = value
	case "oddEven":
		d.OddEven = model.OddEven(value)
	case "sem":
		d.Sem = value
	case "date":
		d.Date = value
	case "classSem":
		d.ClassSem = value
	case "totalMark":
		return setNumber(&d.TotalMark, name, value)
	case "passingMark":
		return setNumber(&d.PassingMark, name, value)
	case "fromDate":
		d.FromDate = value
	case "toDate":
		d.ToDate = value
	case "remarks":
		d.Remarks = value
	case "total_class":
		return setNumber(&d.TotalClass, name, value)
	case "advisorName":
		d.AdvisorName = value
	case "hodName":
		d.HodName = value
	case "fromAddress":
		d.FromAddress = value
	case "class":
		d.Class = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	return nil
}

func setNumber(dst *model.FlexString, name, value string) error {
	v := model.FlexString(value)
	if !v.NumberOrEmpty() {
		return fmt.Errorf("%s: %w", name, ErrInvalidNumber)
	}
	*dst = v
	return nil
}

// SetSubjectField sets "name" or "code" of the subject at index.
func (f *Form) SetSubjectField(index int, name, value string) error {
	if index < 0 || index >= len(f.data.Subjects) {
		return fmt.Errorf("%w: %d", ErrSubjectIndex, index)
	}
	s := &f.data.Subjects[index]
	switch name {
	case "name":
		s.Name = value
	case "code":
		s.Code = value
	default:
		return fmt.Errorf("%w: subject %q", ErrUnknownField, name)
	}
	return nil
}

// AddSubject appends an empty subject row.
func (f *Form) AddSubject() {
	f.data.Subjects = append(f.data.Subjects, model.Subject{})
}

// RemoveSubject deletes the subject at index. The last row may be removed.
func (f *Form) RemoveSubject(index int) error {
	if index < 0 || index >= len(f.data.Subjects) {
		return fmt.Errorf("%w: %d", ErrSubjectIndex, index)
	}
	f.data.Subjects = append(f.data.Subjects[:index:index], f.data.Subjects[index+1:]...)
	return nil
}
