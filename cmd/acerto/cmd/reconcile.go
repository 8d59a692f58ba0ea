package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"acerto-reconciliation-service/cmd/acerto/config"
	"acerto-reconciliation-service/internal/reconciler"
	"acerto-reconciliation-service/internal/reporter"
	pkgerrors "acerto-reconciliation-service/pkg/errors"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flags for the reconcile command
var (
	statementFile  string
	brokerFiles    []string
	outputDir      string
	commissionPct  float64
	delimiter      string
	parallel       bool
	minTokenLength int
	skipExport     bool
)

// reconcileCmd represents the reconcile command
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Reconcile broker spreadsheets against a bank statement",
	Long: `Reconcile matches the credit lines of a parsed bank statement against
the client names in each broker's commission spreadsheet, reports value
divergences and unmatched clients, and exports the settlement workbook.

Broker files are passed as "path=Broker Name" or "path=Broker Name:color";
a path without a broker assignment is accepted but excluded from matching.

Examples:
  # Single broker
  acerto reconcile --statement-file extrato.csv --broker-files "comissoes.xlsx=Maria Souza"

  # Several brokers, custom commission, saving the workbook elsewhere
  acerto reconcile -s extrato.csv \
    -b "ana.xlsx=Ana Lima:blue" -b "bruno.xlsx=Bruno Dias:green" \
    --commission 65 --output-dir reports/

  # Alerts only, no workbook
  acerto reconcile -s extrato.csv -b "comissoes.xlsx=Maria Souza" --no-export`,

	PreRunE: validateReconcileFlags,
	RunE:    runReconcile,
}

func init() {
	rootCmd.AddCommand(reconcileCmd)

	// Required flags
	reconcileCmd.Flags().StringVarP(&statementFile, "statement-file", "s", "", "path to the parsed bank statement CSV (required)")
	reconcileCmd.Flags().StringSliceVarP(&brokerFiles, "broker-files", "b", []string{}, `broker spreadsheets as "path=Broker Name[:color]" (required)`)

	// Output flags
	reconcileCmd.Flags().StringVarP(&outputDir, "output-dir", "o", ".", "directory for the exported workbook")
	reconcileCmd.Flags().BoolVar(&skipExport, "no-export", false, "skip the workbook export, print alerts only")

	// Matching configuration flags
	reconcileCmd.Flags().Float64VarP(&commissionPct, "commission", "c", 70.0, "broker commission percentage (0-100)")
	reconcileCmd.Flags().StringVar(&delimiter, "delimiter", "", "statement CSV delimiter (default comma)")
	reconcileCmd.Flags().IntVar(&minTokenLength, "min-token-length", 0, "minimum name token length considered by the matcher")
	reconcileCmd.Flags().BoolVar(&parallel, "parallel", false, "reconcile brokers in parallel")

	reconcileCmd.MarkFlagRequired("statement-file")
	reconcileCmd.MarkFlagRequired("broker-files")

	viper.BindPFlag("statement-file", reconcileCmd.Flags().Lookup("statement-file"))
	viper.BindPFlag("broker-files", reconcileCmd.Flags().Lookup("broker-files"))
	viper.BindPFlag("output-dir", reconcileCmd.Flags().Lookup("output-dir"))
	viper.BindPFlag("commission", reconcileCmd.Flags().Lookup("commission"))
	viper.BindPFlag("delimiter", reconcileCmd.Flags().Lookup("delimiter"))
	viper.BindPFlag("min-token-length", reconcileCmd.Flags().Lookup("min-token-length"))
	viper.BindPFlag("parallel", reconcileCmd.Flags().Lookup("parallel"))
}

func validateReconcileFlags(cmd *cobra.Command, args []string) error {
	// Viper values allow overrides from the config file.
	statementFile = viper.GetString("statement-file")
	brokerFiles = viper.GetStringSlice("broker-files")
	outputDir = viper.GetString("output-dir")
	commissionPct = viper.GetFloat64("commission")
	delimiter = viper.GetString("delimiter")
	minTokenLength = viper.GetInt("min-token-length")
	parallel = viper.GetBool("parallel")

	if statementFile == "" {
		return fmt.Errorf("statement-file is required")
	}
	if len(brokerFiles) == 0 {
		return fmt.Errorf("at least one broker-file is required")
	}

	if err := validateFileExists(statementFile, "statement file"); err != nil {
		return err
	}
	for i, entry := range brokerFiles {
		path, _, _ := strings.Cut(entry, "=")
		if err := validateFileExists(strings.TrimSpace(path), fmt.Sprintf("broker file %d", i+1)); err != nil {
			return err
		}
	}

	if commissionPct < 0 || commissionPct > 100 {
		return fmt.Errorf("commission must be between 0 and 100, got %v", commissionPct)
	}

	if !skipExport {
		info, err := os.Stat(outputDir)
		if os.IsNotExist(err) {
			return fmt.Errorf("output directory does not exist: %s", outputDir)
		}
		if err != nil {
			return fmt.Errorf("error accessing output directory: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("output path is not a directory: %s", outputDir)
		}
	}

	return nil
}

func validateFileExists(filePath, description string) error {
	if filePath == "" {
		return fmt.Errorf("%s path cannot be empty", description)
	}

	info, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return fmt.Errorf("%s does not exist: %s", description, filePath)
	}
	if err != nil {
		return fmt.Errorf("error accessing %s: %w", description, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory, expected a file: %s", description, filePath)
	}
	return nil
}

func runReconcile(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if viper.GetBool("verbose") {
		fmt.Fprintf(os.Stderr, "Starting reconciliation...\n")
		fmt.Fprintf(os.Stderr, "Statement file: %s\n", statementFile)
		fmt.Fprintf(os.Stderr, "Broker files: %s\n", strings.Join(brokerFiles, ", "))
	}

	statementConfig, err := config.CreateStatementParserConfig(delimiter)
	if err != nil {
		return pkgerrors.ConfigurationError("delimiter", delimiter, err)
	}

	submissions, err := config.ParseSubmissionInputs(brokerFiles)
	if err != nil {
		return pkgerrors.ConfigurationError("broker-files", brokerFiles, err)
	}

	service, err := reconciler.NewService(statementConfig, config.CreateReconcilerConfig(parallel, minTokenLength))
	if err != nil {
		return err
	}

	result, err := service.ProcessReconciliation(ctx, &reconciler.Request{
		StatementFile: statementFile,
		Submissions:   submissions,
	})
	if err != nil {
		return err
	}

	for _, alert := range result.Alerts {
		fmt.Fprintf(os.Stdout, "%s\n", alert)
	}

	if !skipExport {
		exporterConfig, err := config.CreateExporterConfig(commissionPct)
		if err != nil {
			return pkgerrors.ConfigurationError("commission", commissionPct, err)
		}
		exporter, err := reporter.NewExporter(exporterConfig)
		if err != nil {
			return err
		}

		path, err := exporter.ExportFile(result.Results, outputDir)
		if err != nil {
			return pkgerrors.ExportError(pkgerrors.CodeSerializationFailed, outputDir, err)
		}
		fmt.Fprintf(os.Stdout, "Workbook exported to %s\n", path)
	}

	if viper.GetBool("verbose") {
		fmt.Fprintf(os.Stderr, "\nReconciliation completed successfully.\n")
		fmt.Fprintf(os.Stderr, "Statement lines: %d, submissions: %d (%d assigned).\n",
			result.Summary.StatementLines, result.Summary.SubmissionsTotal, result.Summary.SubmissionsAssigned)
		fmt.Fprintf(os.Stderr, "Brokers OK: %d, divergent: %d.\n",
			result.Summary.OKCount, result.Summary.DivergentCount)
		fmt.Fprintf(os.Stderr, "Processing time: %v\n", result.Summary.Duration)
	}

	return nil
}
