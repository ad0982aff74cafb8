package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"guessgame-service/internal/domain"
	"gopkg.in/yaml.v3"
)

// QuestionLoader reads question sets from <dir>/<setID>.{yaml,yml,json}.
// JSON files are parsed by the YAML decoder, so the image-metadata lists the
// bot has always used ([{"image": "paris.jpg"}, ...]) load unchanged.
type QuestionLoader struct {
	dir       string
	imagesDir string
}

type questionRecord struct {
	Image   string   `yaml:"image"`
	Answers []string `yaml:"answers"`
	Answer  string   `yaml:"answer"`
	Hints   []string `yaml:"hints"`
}

var extensions = []string{".yaml", ".yml", ".json"}

func NewQuestionLoader(dir, imagesDir string) *QuestionLoader {
	return &QuestionLoader{dir: dir, imagesDir: imagesDir}
}

func (l *QuestionLoader) LoadQuestions(_ context.Context, setID string) ([]domain.Question, error) {
	path, err := l.find(setID)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read question set: %w", err)
	}

	var records []questionRecord
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}

	questions := make([]domain.Question, 0, len(records))
	for _, r := range records {
		if r.Image == "" {
			continue
		}
		answers := r.Answers
		if r.Answer != "" {
			answers = append([]string{r.Answer}, answers...)
		}
		questions = append(questions, domain.Question{
			ImageRef: l.imageRef(r.Image),
			Answers:  answers,
			Hints:    r.Hints,
		})
	}
	return questions, nil
}

func (l *QuestionLoader) find(setID string) (string, error) {
	if setID == "" || filepath.Base(setID) != setID {
		return "", domain.ErrQuestionSetNotFound
	}
	for _, ext := range extensions {
		path := filepath.Join(l.dir, setID+ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		} else if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("stat question set: %w", err)
		}
	}
	return "", domain.ErrQuestionSetNotFound
}

func (l *QuestionLoader) imageRef(image string) string {
	if l.imagesDir == "" || filepath.IsAbs(image) {
		return image
	}
	return filepath.Join(l.imagesDir, image)
}
