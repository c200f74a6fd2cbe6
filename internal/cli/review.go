package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/felixgeelhaar/codementor/internal/domain"
	"github.com/felixgeelhaar/codementor/internal/review"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// Output formats
const (
	FormatText = "text"
	FormatJSON = "json"
)

var (
	flagLanguage string
	flagFormat   string
)

var reviewCmd = &cobra.Command{
	Use:   "review <file>",
	Short: "Run a hard review on a source file (use - for stdin)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lang, err := resolveLanguage(args[0], flagLanguage)
		if err != nil {
			exitCode = ExitUsageError
			return err
		}
		if flagFormat != FormatText && flagFormat != FormatJSON {
			exitCode = ExitUsageError
			return fmt.Errorf("unknown format %q (want text or json)", flagFormat)
		}

		code, err := readSource(cmd.InOrStdin(), args[0])
		if err != nil {
			exitCode = ExitRuntimeError
			return err
		}

		result := review.GenerateReview(lang, code)
		return writeResult(cmd.OutOrStdout(), flagFormat, lang, result)
	},
}

func init() {
	reviewCmd.Flags().StringVar(&flagLanguage, "language", "", "Source language (python, javascript, typescript); inferred from the extension when omitted")
	reviewCmd.Flags().StringVar(&flagFormat, "format", FormatText, "Output format (text, json)")
}

// resolveLanguage prefers an explicit language over the file extension
func resolveLanguage(path, explicit string) (domain.Language, error) {
	if explicit != "" {
		lang := domain.Language(strings.ToLower(strings.TrimSpace(explicit)))
		if !lang.IsSupported() {
			return "", fmt.Errorf("%s", domain.MsgLanguageNotAllow)
		}
		return lang, nil
	}

	lang, ok := domain.LanguageFromFilename(path)
	if !ok {
		return "", fmt.Errorf("cannot infer language from %q; pass --language", path)
	}
	return lang, nil
}

func readSource(stdin io.Reader, path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := afero.ReadFile(appFs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("file not found: %s", path)
		}
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

func writeResult(w io.Writer, format string, lang domain.Language, result domain.ReviewResult) error {
	if format == FormatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s review (%s)\n\n", lang.Label(), result.Severity)
	fmt.Fprintf(&b, "%s\n", result.Summary)

	for i, f := range result.Findings {
		fmt.Fprintf(&b, "\n%d. [%s] %s\n", i+1, f.Type, f.Title)
		fmt.Fprintf(&b, "   %s\n", f.Explain)
		fmt.Fprintf(&b, "   Fix: %s\n", f.Fix)
		if f.ExamplePatch != "" {
			for _, line := range strings.Split(f.ExamplePatch, "\n") {
				fmt.Fprintf(&b, "   | %s\n", line)
			}
		}
	}

	if len(result.NextSteps) > 0 {
		b.WriteString("\nNext steps:\n")
		for _, step := range result.NextSteps {
			fmt.Fprintf(&b, "  - %s\n", step)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}
