// Package seed loads demo projects, employees and tasks into a repository.
package seed

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/janhq/pm-assistant/internal/domain/project"
)

//go:embed demo.yaml
var demoData []byte

// Document is the on-disk seed layout.
type Document struct {
	Projects  []project.Project  `yaml:"projects"`
	Employees []project.Employee `yaml:"employees"`
	Tasks     []project.Task     `yaml:"tasks"`
}

// Load reads a seed document. An empty path returns the bundled demo data.
func Load(path string) (*Document, error) {
	raw := demoData
	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read seed file: %w", err)
		}
		raw = data
	}
	return Parse(raw)
}

// Parse decodes and validates a seed document.
func Parse(raw []byte) (*Document, error) {
	var doc Document
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	if err := doc.validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (d *Document) validate() error {
	projects := make(map[string]bool, len(d.Projects))
	for _, p := range d.Projects {
		if p.ID == "" || p.Name == "" {
			return fmt.Errorf("seed project needs project_id and project_name")
		}
		projects[p.ID] = true
	}
	employees := make(map[string]bool, len(d.Employees))
	for _, e := range d.Employees {
		if e.ID == "" || e.FirstName == "" {
			return fmt.Errorf("seed employee needs id and first_name")
		}
		if e.Workload != "" && !e.Workload.Valid() {
			return fmt.Errorf("seed employee %s: unknown workload %q", e.ID, e.Workload)
		}
		if e.Availability != "" && !e.Availability.Valid() {
			return fmt.Errorf("seed employee %s: unknown availability %q", e.ID, e.Availability)
		}
		employees[e.ID] = true
	}
	for _, t := range d.Tasks {
		if t.ID == "" || t.Title == "" {
			return fmt.Errorf("seed task needs task_id and task_title")
		}
		if !projects[t.ProjectID] {
			return fmt.Errorf("seed task %s: unknown project %q", t.ID, t.ProjectID)
		}
		if t.AssignedEmployeeID != "" && !employees[t.AssignedEmployeeID] {
			return fmt.Errorf("seed task %s: unknown employee %q", t.ID, t.AssignedEmployeeID)
		}
	}
	return nil
}

// Apply writes the document into repo in one transaction. Existing rows with the same ids are overwritten.
func Apply(ctx context.Context, repo project.Repository, doc *Document) error {
	return repo.WithinTx(ctx, func(tx project.Repository) error {
		for i := range doc.Projects {
			p := doc.Projects[i]
			if err := tx.SaveProject(ctx, &p); err != nil {
				return fmt.Errorf("seed project %s: %w", p.ID, err)
			}
		}
		for i := range doc.Employees {
			e := doc.Employees[i]
			if e.Workload == "" {
				e.Workload = project.WorkloadLow
			}
			if e.Availability == "" {
				e.Availability = project.AvailabilityAvailable
			}
			if err := tx.SaveEmployee(ctx, &e); err != nil {
				return fmt.Errorf("seed employee %s: %w", e.ID, err)
			}
		}
		for i := range doc.Tasks {
			t := doc.Tasks[i]
			if t.Status == "" {
				t.Status = project.TaskStatusTodo
			}
			if err := tx.SaveTask(ctx, &t); err != nil {
				return fmt.Errorf("seed task %s: %w", t.ID, err)
			}
		}
		return nil
	})
}
