// Package llm asks a language model for robot orders.
package llm

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/louisbranch/rgsimulator/internal/services/sim/domain/action"
	"github.com/louisbranch/rgsimulator/internal/services/sim/domain/board"
	"github.com/louisbranch/rgsimulator/internal/services/sim/domain/snapshot"
	"google.golang.org/genai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.0-flash"

//go:embed prompt.tmpl
var promptSource string

var promptTemplate = template.Must(template.New("prompt").Parse(promptSource))

// Generator produces a completion for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Controller renders the robot's view into a prompt and parses the model's
// one-line answer.
type Controller struct {
	gen   Generator
	board *board.Map
}

// New returns a controller backed by gen.
func New(gen Generator, m *board.Map) *Controller {
	return &Controller{gen: gen, board: m}
}

// NewGemini returns a controller backed by the Gemini API.
func NewGemini(ctx context.Context, apiKey, model string, m *board.Map) (*Controller, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if model == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return New(&geminiGenerator{client: client, model: model, temperature: 0.4}, m), nil
}

type promptData struct {
	Turn     int
	Self     snapshot.Self
	Settings board.Settings
	Targets  []board.Loc
	Robots   []snapshot.Robot
}

// Decide asks the model for an order.
func (c *Controller) Decide(ctx context.Context, self snapshot.Self, info snapshot.GameInfo) (action.Action, error) {
	prompt, err := c.render(self, info)
	if err != nil {
		return action.Action{}, err
	}
	reply, err := c.gen.Generate(ctx, prompt)
	if err != nil {
		return action.Action{}, fmt.Errorf("generate decision for robot %d: %w", self.RobotID, err)
	}
	return parseReply(reply)
}

func (c *Controller) render(self snapshot.Self, info snapshot.GameInfo) (string, error) {
	data := promptData{
		Turn:     info.Turn,
		Self:     self,
		Settings: c.board.Settings(),
		Targets:  c.board.LocsAround(self.Location, board.LocObstacle, board.LocInvalid),
		Robots:   info.Robots,
	}
	var buf bytes.Buffer
	if err := promptTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return buf.String(), nil
}

// parseReply reads the first non-empty line of a model answer, ignoring code
// fences the model may wrap it in.
func parseReply(reply string) (action.Action, error) {
	for _, line := range strings.Split(reply, "\n") {
		line = strings.Trim(strings.TrimSpace(line), "`")
		if line == "" {
			continue
		}
		return action.ParseText(line)
	}
	return action.Action{}, fmt.Errorf("%w: empty model reply", action.ErrMalformed)
}

type geminiGenerator struct {
	client      *genai.Client
	model       string
	temperature float32
}

func (g *geminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	temperature := g.temperature
	result, err := g.client.Models.GenerateContent(
		ctx,
		g.model,
		genai.Text(prompt),
		&genai.GenerateContentConfig{
			Temperature: &temperature,
		},
	)
	if err != nil {
		return "", err
	}
	return result.Text(), nil
}
