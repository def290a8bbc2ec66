package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"foodrec/internal/config"
	"foodrec/internal/recipe"
	"foodrec/internal/recommend"
)

var form recipe.Form

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Get recipe recommendations for nutritional targets",
	Example: `  foodrec recommend --calories 350 --protein 25 --ingredients "chicken, garlic"
  foodrec recommend --test-case salad`,
	RunE: runRecommend,
}

var testCaseID string

func init() {
	f := recommendCmd.Flags()
	for _, field := range []struct {
		name  string
		usage string
	}{
		{"calories", "calories"},
		{"fat", "fat (g)"},
		{"carbohydrates", "carbohydrates (g)"},
		{"protein", "protein (g)"},
		{"cholesterol", "cholesterol"},
		{"sodium", "sodium"},
		{"fiber", "fiber (g)"},
	} {
		f.String(field.name, "", field.usage)
	}
	f.StringVar(&form.Ingredients, "ingredients", "", "comma-separated ingredients")
	f.StringVar(&testCaseID, "test-case", "", "fill the form from a built-in test case")
}

func runRecommend(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if testCaseID != "" {
		tc, ok := recommend.FindTestCase(testCaseID)
		if !ok {
			return fmt.Errorf("unknown test case %q", testCaseID)
		}
		form = recipe.FormFromRequest(tc.Payload)
	} else {
		fields := map[string]*any{
			"calories":      &form.Calories,
			"fat":           &form.Fat,
			"carbohydrates": &form.Carbohydrates,
			"protein":       &form.Protein,
			"cholesterol":   &form.Cholesterol,
			"sodium":        &form.Sodium,
			"fiber":         &form.Fiber,
		}
		for name, dst := range fields {
			v, _ := cmd.Flags().GetString(name)
			*dst = v
		}
	}

	ctx, cancel := context.WithTimeout(ctx, a.cfg.RequestTimeout)
	defer cancel()

	recs, err := a.service.Recommend(ctx, form)
	if err != nil {
		return err
	}
	printRecommendations(cmd.OutOrStdout(), recs)
	return nil
}

func printRecommendations(w io.Writer, recs []recipe.Recommendation) {
	if len(recs) == 0 {
		fmt.Fprintln(w, "No results.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tRECIPE\tIMAGE")
	for i, r := range recs {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", i+1, r.RecipeName, r.ImageURL)
	}
	tw.Flush()
}

var runTestsCmd = &cobra.Command{
	Use:   "run-tests",
	Short: "Run the built-in test cases one after another",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		cases := recommend.DefaultTestCases()
		ctx, cancel := context.WithTimeout(ctx, a.cfg.RequestTimeout*time.Duration(len(cases)))
		defer cancel()

		printTestResults(cmd.OutOrStdout(), a.service.RunTestCases(ctx, cases))
		return nil
	},
}

func printTestResults(w io.Writer, results []recommend.TestResult) {
	for _, r := range results {
		if r.OK {
			fmt.Fprintf(w, "%s: OK (%d items)\n", r.Label, r.Count)
			continue
		}
		fmt.Fprintf(w, "%s: Error (%s)\n", r.Label, r.Error)
	}
}

var endpointCmd = &cobra.Command{
	Use:   "endpoint",
	Short: "Show or change the inference endpoint",
}

var endpointGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Print the endpoint in use",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()
		fmt.Fprintln(cmd.OutOrStdout(), a.endpoint.URL())
		return nil
	},
}

var endpointSetCmd = &cobra.Command{
	Use:   "set <url-or-space>",
	Short: "Persist a new endpoint",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		url := strings.TrimSpace(args[0])
		if url == "" {
			return fmt.Errorf("endpoint must not be empty")
		}
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()
		if err := a.store.SaveSetting(cmd.Context(), config.SettingAPIURL, url); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), url)
		return nil
	},
}

var endpointDetectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Re-detect the endpoint and persist it",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()
		url := a.detect(cmd.Context())
		if err := a.store.SaveSetting(cmd.Context(), config.SettingAPIURL, url); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), url)
		return nil
	},
}
