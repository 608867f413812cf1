package cmd

import (
	"WhatsGrapp/bot/chat"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var stepsCmd = &cobra.Command{
	Use:   "steps",
	Short: "Print the onboarding step graph as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		conf, err := loadConfig()
		if err != nil {
			return err
		}
		a, err := wire(cmd.Context(), conf, slog.New(slog.NewTextHandler(io.Discard, nil)), wireOptions{memory: true})
		if err != nil {
			return err
		}
		return writeSteps(cmd.OutOrStdout(), a.workflow)
	},
}

func init() {
	rootCmd.AddCommand(stepsCmd)
}

type stepNode struct {
	ID     string   `yaml:"id"`
	Auto   bool     `yaml:"auto,omitempty"`
	Input  bool     `yaml:"validated_input,omitempty"`
	Next   []string `yaml:"next"`
	Prompt string   `yaml:"prompt,omitempty"`
}

type stepGraph struct {
	Initial string     `yaml:"initial"`
	Steps   []stepNode `yaml:"steps"`
}

func describe(w chat.Workflow) stepGraph {
	graph := stepGraph{Initial: string(w.InitialStep())}
	for _, id := range w.Steps() {
		step, ok := w.GetStep(id)
		if !ok {
			continue
		}
		node := stepNode{
			ID:     string(id),
			Auto:   step.Auto,
			Input:  step.Validate != nil,
			Prompt: step.Prompt,
		}
		for _, target := range step.Next.Targets() {
			node.Next = append(node.Next, string(target))
		}
		graph.Steps = append(graph.Steps, node)
	}
	return graph
}

func writeSteps(out io.Writer, w chat.Workflow) error {
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(describe(w)); err != nil {
		return fmt.Errorf("encoding steps: %w", err)
	}
	return enc.Close()
}
