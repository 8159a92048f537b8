package artifact

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sync"
	"text/template"

	"github.com/zbiljic/blueprint/pkg/llm"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

// Task is a structured generation task: it validates the request, renders
// its prompt template with the description, asks the model for a reply
// matching its output shape and validates that reply.
type Task struct {
	Kind    Kind
	Name    string
	Version string
	// InputField is the name of the template slot.
	InputField string
	// OutputField is the name of the single string field of the reply.
	OutputField string
	// OutputDescription tells the model what the output field contains.
	OutputDescription string

	template *template.Template
}

type taskDef struct {
	kind              Kind
	name              string
	version           string
	outputDescription string
}

var taskDefs = []taskDef{
	{
		kind:              PromptKind,
		name:              "generate-prompt",
		version:           "v1",
		outputDescription: "The generated prompt for the LLM application.",
	},
	{
		kind:              DatasetStructureKind,
		name:              "generate-dataset-structure",
		version:           "v1",
		outputDescription: "The generated dataset structure for fine-tuning, including fields and data types.",
	},
	{
		kind:              ResponseFormatKind,
		name:              "generate-response-format",
		version:           "v1",
		outputDescription: "A suggested response format for the LLM application.",
	},
}

var (
	loadTasksOnce sync.Once
	loadedTasks   []*Task
	loadTasksErr  error
)

// Tasks returns the tasks for all kinds, in display order. Templates are
// parsed once.
func Tasks() ([]*Task, error) {
	loadTasksOnce.Do(func() {
		loadedTasks, loadTasksErr = loadTasks(templatesFS)
	})
	return loadedTasks, loadTasksErr
}

// TaskFor returns the task producing kind.
func TaskFor(kind Kind) (*Task, error) {
	tasks, err := Tasks()
	if err != nil {
		return nil, err
	}
	for _, t := range tasks {
		if t.Kind == kind {
			return t, nil
		}
	}
	return nil, fmt.Errorf("no task for artifact kind %s", kind)
}

func loadTasks(fsys fs.FS) ([]*Task, error) {
	tasks := make([]*Task, 0, len(taskDefs))

	for _, def := range taskDefs {
		filename := path.Join("templates", def.name+".tmpl")

		content, err := fs.ReadFile(fsys, filename)
		if err != nil {
			return nil, fmt.Errorf("failed to load template %s: %w", filename, err)
		}

		tmpl, err := template.New(def.name).Option("missingkey=error").Parse(string(content))
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", filename, err)
		}

		tasks = append(tasks, &Task{
			Kind:              def.kind,
			Name:              def.name,
			Version:           def.version,
			InputField:        DescriptionField,
			OutputField:       def.kind.Field(),
			OutputDescription: def.outputDescription,
			template:          tmpl,
		})
	}

	return tasks, nil
}

// Shape returns the expected reply shape.
func (t *Task) Shape() *llm.Shape {
	return &llm.Shape{
		Name:        fmt.Sprintf("%s_output", t.Kind.Field()),
		Field:       t.OutputField,
		Description: t.OutputDescription,
	}
}

// Render substitutes the description into the template. It does not
// validate the request.
func (t *Task) Render(req Request) (string, error) {
	var buf bytes.Buffer
	if err := t.template.Execute(&buf, req); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", t.Name, err)
	}
	return buf.String(), nil
}

// Run executes the task against aip.
func (t *Task) Run(ctx context.Context, aip llm.AIPrompt, req Request) (Result, error) {
	if err := req.Validate(); err != nil {
		return Result{}, err
	}

	prompt, err := t.Render(req)
	if err != nil {
		return Result{}, err
	}

	shape := t.Shape()

	reply, err := aip.Generate(ctx, prompt, shape)
	if err != nil {
		return Result{}, normalizeError(aip.String(), err)
	}

	text, err := llm.DecodeField(reply, shape)
	if err != nil {
		if errors.Is(err, llm.ErrEmptyReply) {
			return Result{}, llm.Empty(aip.String(), "")
		}
		return Result{}, err
	}

	return Result{Kind: t.Kind, Text: text}, nil
}

// normalizeError turns anything that is not one of the known error kinds
// into a remote error.
func normalizeError(provider string, err error) error {
	if llm.Classify(err) == llm.KindUnknown {
		return llm.Remote(provider, err)
	}
	return err
}
