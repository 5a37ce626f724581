package store

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/sandeepkv93/taskdesk/internal/model"
)

type ProjectPatch struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Color       *string `json:"color,omitempty"`
	Archived    *bool   `json:"archived,omitempty"`
}

func (s *Store) Projects() []model.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Project{}, s.projects...)
}

func (s *Store) Project(id string) (model.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.projectIndex(id)
	if i < 0 {
		return model.Project{}, fmt.Errorf("%w: project %s", ErrNotFound, id)
	}
	return s.projects[i], nil
}

func (s *Store) ProjectByName(name string) (model.Project, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.projects {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return model.Project{}, false
}

func (s *Store) AddProject(p model.Project) (model.Project, error) {
	now := s.now()
	if strings.TrimSpace(p.ID) == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	if err := p.Validate(); err != nil {
		return model.Project{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	err := s.mutate(EventProjectsChanged, func() ([]string, error) {
		if s.projectIndex(p.ID) >= 0 {
			return nil, fmt.Errorf("%w: duplicate project id %s", ErrInvalidInput, p.ID)
		}
		s.projects = append(s.projects, p)
		return []string{p.ID}, nil
	})
	return p, err
}

func (s *Store) UpdateProject(id string, patch ProjectPatch) (model.Project, error) {
	var out model.Project
	err := s.mutate(EventProjectsChanged, func() ([]string, error) {
		i := s.projectIndex(id)
		if i < 0 {
			return nil, fmt.Errorf("%w: project %s", ErrNotFound, id)
		}
		next := s.projects[i]
		if patch.Name != nil {
			next.Name = strings.TrimSpace(*patch.Name)
		}
		if patch.Description != nil {
			next.Description = *patch.Description
		}
		if patch.Color != nil {
			next.Color = *patch.Color
		}
		if patch.Archived != nil {
			next.Archived = *patch.Archived
		}
		next.UpdatedAt = s.now()
		if err := next.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
		s.projects[i] = next
		out = next
		return []string{id}, nil
	})
	return out, err
}

// DeleteProject removes the project only. Tasks keep their ProjectID and
// simply stop resolving to a project.
func (s *Store) DeleteProject(id string) error {
	return s.mutate(EventProjectsChanged, func() ([]string, error) {
		i := s.projectIndex(id)
		if i < 0 {
			return nil, fmt.Errorf("%w: project %s", ErrNotFound, id)
		}
		s.projects = append(s.projects[:i], s.projects[i+1:]...)
		return []string{id}, nil
	})
}

func (s *Store) Tags() []model.Tag {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Tag{}, s.tags...)
}

func (s *Store) AddTag(tag model.Tag) (model.Tag, error) {
	tag.Name = strings.TrimSpace(tag.Name)
	if tag.Name == "" {
		return model.Tag{}, fmt.Errorf("%w: tag name is required", ErrInvalidInput)
	}
	if strings.TrimSpace(tag.ID) == "" {
		tag.ID = uuid.NewString()
	}
	if tag.Color == "" {
		tag.Color = DefaultTagColor
	}
	err := s.mutate(EventTagsChanged, func() ([]string, error) {
		for _, existing := range s.tags {
			if existing.ID == tag.ID || strings.EqualFold(existing.Name, tag.Name) {
				return nil, fmt.Errorf("%w: duplicate tag %q", ErrInvalidInput, tag.Name)
			}
		}
		s.tags = append(s.tags, tag)
		return []string{tag.ID}, nil
	})
	return tag, err
}

// UpdateTag renames or recolours a tag, including the copies embedded in
// tasks.
func (s *Store) UpdateTag(id, name, color string) (model.Tag, error) {
	var out model.Tag
	err := s.mutate(EventTagsChanged, func() ([]string, error) {
		i := s.tagIndex(id)
		if i < 0 {
			return nil, fmt.Errorf("%w: tag %s", ErrNotFound, id)
		}
		if name = strings.TrimSpace(name); name != "" {
			s.tags[i].Name = name
		}
		if color != "" {
			s.tags[i].Color = color
		}
		out = s.tags[i]
		for ti := range s.tasks {
			for gi := range s.tasks[ti].Tags {
				if s.tasks[ti].Tags[gi].ID == id {
					s.tasks[ti].Tags[gi] = out
				}
			}
		}
		return []string{id}, nil
	})
	return out, err
}

// DeleteTag removes the tag from the catalog and from every task.
func (s *Store) DeleteTag(id string) error {
	return s.mutate(EventTagsChanged, func() ([]string, error) {
		i := s.tagIndex(id)
		if i < 0 {
			return nil, fmt.Errorf("%w: tag %s", ErrNotFound, id)
		}
		s.tags = append(s.tags[:i], s.tags[i+1:]...)
		for ti := range s.tasks {
			s.tasks[ti].Tags = removeTag(s.tasks[ti].Tags, id)
		}
		return []string{id}, nil
	})
}

// tagByNameLocked returns the catalog tag named name, creating it with the
// default colour if needed. Callers hold s.mu.
func (s *Store) tagByNameLocked(name string) model.Tag {
	for _, tag := range s.tags {
		if strings.EqualFold(tag.Name, name) {
			return tag
		}
	}
	tag := model.Tag{ID: uuid.NewString(), Name: name, Color: DefaultTagColor}
	s.tags = append(s.tags, tag)
	return tag
}

func removeTag(tags []model.Tag, id string) []model.Tag {
	out := make([]model.Tag, 0, len(tags))
	for _, tag := range tags {
		if tag.ID != id {
			out = append(out, tag)
		}
	}
	return out
}

func (s *Store) projectIndex(id string) int {
	for i, p := range s.projects {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) tagIndex(id string) int {
	for i, t := range s.tags {
		if t.ID == id {
			return i
		}
	}
	return -1
}
