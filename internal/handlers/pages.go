package handlers

import (
	"html/template"
	"net/http"

	"budget-tracker/internal/models"

	"go.uber.org/zap"
)

// Student is one entry of the roster page.
type Student struct {
	Name  string
	Track string
}

var roster = []Student{
	{"Ana Popescu", "Backend"},
	{"Luca Bianchi", "Data"},
	{"Maya Cohen", "Frontend"},
	{"Tomás Ruiz", "Infrastructure"},
}

// HomeViewModel is the data passed to the home template.
type HomeViewModel struct {
	Categories []models.Category
}

// RosterViewModel is the data passed to the students template.
type RosterViewModel struct {
	Students []Student
}

// Home renders the landing page.
func (h *Handlers) Home(w http.ResponseWriter, r *http.Request) {
	h.render(w, "home.html", HomeViewModel{Categories: models.Categories})
}

// About renders the about page.
func (h *Handlers) About(w http.ResponseWriter, r *http.Request) {
	h.render(w, "about.html", nil)
}

// Students renders the student roster.
func (h *Handlers) Students(w http.ResponseWriter, r *http.Request) {
	h.render(w, "students.html", RosterViewModel{Students: roster})
}

func (h *Handlers) render(w http.ResponseWriter, viewName string, data any) {
	tmpl, err := template.ParseFS(h.templates, "base.html", viewName)
	if err != nil {
		h.log.Error("template parse failed", zap.String("view", viewName), zap.Error(err))
		http.Error(w, "Template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "base.html", data); err != nil {
		h.log.Error("template execution failed", zap.String("view", viewName), zap.Error(err))
	}
}
