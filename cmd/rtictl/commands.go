package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"rtiassist/internal/llm"
	"rtiassist/internal/model"
	"rtiassist/internal/service"

	"github.com/spf13/cobra"
)

func (o *rootOptions) backend() *service.BackendClient {
	return service.NewBackendClient(o.cfg.APIBase, o.cfg.BackendTimeout, o.logger)
}

func healthCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the backend is up",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			status, err := opts.backend().Health(cmd.Context())
			if err != nil {
				return fmt.Errorf("backend %s: %w", opts.cfg.APIBase, err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (version %s)\n", status.Message, status.Version)
			for _, e := range status.Endpoints {
				fmt.Fprintf(out, "  %s\n", e)
			}
			return nil
		},
	}
}

func piosCmd(opts *rootOptions) *cobra.Command {
	var department string

	cmd := &cobra.Command{
		Use:   "pios",
		Short: "List departments and their Public Information Officers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir, err := opts.backend().ListPIOs(cmd.Context())
			if err != nil {
				return err
			}

			departments := dir.Departments
			if len(departments) == 0 {
				for d := range dir.DepartmentPIOs {
					departments = append(departments, d)
				}
				sort.Strings(departments)
			}

			out := cmd.OutOrStdout()
			found := false
			for _, d := range departments {
				if department != "" && !strings.EqualFold(d, department) {
					continue
				}
				found = true
				fmt.Fprintln(out, d)
				for _, pio := range dir.DepartmentPIOs[d] {
					fmt.Fprintf(out, "  %s\n", pio.Label())
				}
			}
			if department != "" && !found {
				return fmt.Errorf("department %q not found", department)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&department, "department", "", "only show this department")
	return cmd
}

func predictCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "predict [complaint]",
		Short: "Predict the responsible department for a complaint",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			complaint := strings.Join(args, " ")
			if !model.ValidComplaint(complaint) {
				return errors.New(service.MsgComplaintRequired)
			}

			result, err := opts.backend().Predict(cmd.Context(), complaint)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), result)
			}
			printPrediction(cmd.OutOrStdout(), result)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw backend response")
	return cmd
}

func letterCmd(opts *rootOptions) *cobra.Command {
	var (
		complaint string
		name      string
		address   string
		pioIndex  int
		output    string
	)

	cmd := &cobra.Command{
		Use:   "letter",
		Short: "Predict the department and draft the full RTI letter",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !model.ValidComplaint(complaint) {
				return errors.New(service.MsgComplaintRequired)
			}
			if strings.TrimSpace(name) == "" || strings.TrimSpace(address) == "" {
				return errors.New(service.MsgDetailsRequired)
			}

			client := opts.backend()
			result, err := client.Predict(cmd.Context(), complaint)
			if err != nil {
				return err
			}

			pio := result.DefaultPIO()
			if cmd.Flags().Changed("pio") {
				if pioIndex < 0 || pioIndex >= len(result.Pios) {
					return fmt.Errorf("%w: index %d of %d", service.ErrInvalidSelection, pioIndex, len(result.Pios))
				}
				pio = result.Pios[pioIndex]
			}

			resp, err := client.GenerateLetter(cmd.Context(), model.NewLetterRequest(complaint, name, address, pio))
			if err != nil {
				return err
			}

			if output == "auto" {
				output = service.DownloadFilename(time.Now())
			}
			if output == "" || output == "-" {
				_, err = io.WriteString(cmd.OutOrStdout(), resp.Letter)
				return err
			}
			if err := os.WriteFile(output, []byte(resp.Letter), 0o644); err != nil {
				return fmt.Errorf("write letter: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "letter written to %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVar(&complaint, "complaint", "", "description of the issue (required)")
	cmd.Flags().StringVar(&name, "name", "", "your full name (required)")
	cmd.Flags().StringVar(&address, "address", "", "your address (required)")
	cmd.Flags().IntVar(&pioIndex, "pio", 0, "index of the officer in the prediction (default first)")
	cmd.Flags().StringVarP(&output, "output", "o", "", `write the letter to this file; "auto" names it RTI_Letter_<date>.txt`)
	return cmd
}

func bodyCmd(opts *rootOptions) *cobra.Command {
	var input model.LetterInput
	var tone string

	cmd := &cobra.Command{
		Use:   "body",
		Short: "Generate a letter body with the configured LLM provider",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			input.Tone = model.Tone(tone)

			completer, err := llm.NewCompleter(cmd.Context(), opts.cfg.AI)
			if err != nil {
				return err
			}
			body, err := service.NewLetterBodyService(completer, opts.logger).Generate(cmd.Context(), input)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), body)
			return nil
		},
	}

	cmd.Flags().StringVar(&input.RecipientName, "recipient", "", "recipient name")
	cmd.Flags().StringVar(&input.RecipientAddress, "recipient-address", "", "recipient address")
	cmd.Flags().StringVar(&input.Subject, "subject", "", "letter subject")
	cmd.Flags().StringArrayVar(&input.KeyPoints, "point", nil, "key point to cover (repeatable)")
	cmd.Flags().StringVar(&tone, "tone", string(model.ToneFormal), "formal, informal or neutral")
	cmd.Flags().StringVar(&input.Language, "language", "English", "language of the letter")
	cmd.Flags().StringVar(&input.SenderName, "sender", "", "sender name")
	return cmd
}

func printPrediction(w io.Writer, result *model.PredictionResult) {
	fmt.Fprintf(w, "Department: %s\n", result.PredictedDepartment)
	fmt.Fprintf(w, "Confidence: %s\n", result.ConfidencePercent())
	if len(result.Pios) == 0 {
		fmt.Fprintln(w, "No officers returned")
		return
	}
	fmt.Fprintln(w, "Officers:")
	for i, pio := range result.Pios {
		fmt.Fprintf(w, "  [%d] %s\n", i, pio.Label())
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
