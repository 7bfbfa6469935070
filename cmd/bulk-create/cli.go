package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"

	"github.com/stemsi/marksheet-builder/internal/config"
	"github.com/stemsi/marksheet-builder/internal/form"
	"github.com/stemsi/marksheet-builder/internal/model"
	"github.com/stemsi/marksheet-builder/internal/service"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	defaults    config.FormDefaults
	templates   *service.TemplateService
	submissions *service.SubmissionService
	stdout      io.Writer
	stderr      io.Writer
}

func (cli *commandLine) run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("bulk-create", flag.ContinueOnError)
	fs.SetOutput(cli.stderr)
	userID := fs.String("user", "", "ID of the user owning the students (required)")
	templatePath := fs.String("template", "", "JSON file with the template fields")
	className := fs.String("class", "", "Class (template name) to create marksheets for; overrides the file")
	list := fs.Bool("list", false, "List the available classes and exit")
	continueOnError := fs.Bool("continue-on-error", false, "Keep going after a failed student")
	fs.Usage = func() {
		fmt.Fprintln(cli.stderr, "Usage:")
		fmt.Fprintln(cli.stderr, "  bulk-create -user ID -list")
		fmt.Fprintln(cli.stderr, "  bulk-create -user ID -template FILE [-class NAME] [-continue-on-error]")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return errHelp
		}
		return err
	}
	if *userID == "" || (!*list && *templatePath == "") {
		fs.Usage()
		return errHelp
	}

	if *list {
		return cli.listTemplates(ctx, *userID)
	}

	tmpl, err := cli.loadTemplate(*templatePath)
	if err != nil {
		return err
	}
	if *className != "" {
		tmpl.Class = *className
	}

	return cli.submit(ctx, service.SubmitInput{
		FormID:          uuid.New(),
		UserID:          *userID,
		Form:            tmpl,
		ContinueOnError: *continueOnError,
	})
}

func (cli *commandLine) listTemplates(ctx context.Context, userID string) error {
	names := cli.templates.TemplateNames(ctx, userID)
	if len(names) == 0 {
		color.New(color.FgYellow).Fprintln(cli.stdout, "No classes found.")
		return nil
	}
	color.New(color.FgCyan).Fprintln(cli.stdout, "Available classes:")
	for _, n := range names {
		fmt.Fprintf(cli.stdout, "  %s\n", n)
	}
	return nil
}

// loadTemplate reads a TemplateForm from path on top of the default values.
func (cli *commandLine) loadTemplate(path string) (model.TemplateForm, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return model.TemplateForm{}, fmt.Errorf("read template: %w", err)
	}

	tmpl := form.New(cli.defaults).Snapshot()
	if err := json.Unmarshal(raw, &tmpl); err != nil {
		return model.TemplateForm{}, fmt.Errorf("parse template %s: %w", path, err)
	}
	return tmpl, nil
}

func (cli *commandLine) submit(ctx context.Context, in service.SubmitInput) error {
	events, cancel := cli.submissions.Subscribe(in.FormID)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range events {
			if ev.Event == model.StatusProgress {
				fmt.Fprintf(cli.stderr, "[%d/%d] %s: %s\n", ev.Done, ev.Total, ev.Student, ev.Status)
			}
		}
	}()

	result, err := cli.submissions.Submit(ctx, in)
	cancel()
	<-done

	var valErr *service.ValidationError
	if errors.As(err, &valErr) {
		color.New(color.FgRed).Fprintln(cli.stdout, "Template is incomplete:")
		for field, msg := range valErr.Fields {
			fmt.Fprintf(cli.stdout, "  %s: %s\n", field, msg)
		}
		return err
	}

	if result != nil {
		cli.printResult(result, err == nil)
	}
	return err
}

func (cli *commandLine) printResult(result *model.SubmitResult, ok bool) {
	if len(result.Outcomes) > 0 {
		table := tablewriter.NewWriter(cli.stdout)
		table.SetHeader([]string{"#", "Roll No", "Student", "Status", "Error"})
		for i, out := range result.Outcomes {
			table.Append([]string{
				strconv.Itoa(i + 1),
				out.RollNo.String(),
				out.StudentName,
				string(out.Status),
				out.Error,
			})
		}
		table.Render()
	}

	if ok {
		color.New(color.FgGreen).Fprintln(cli.stdout, result.Message)
		return
	}
	color.New(color.FgRed).Fprintln(cli.stdout, result.Message)
}
