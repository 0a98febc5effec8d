package schema

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/invopop/jsonschema"
	jsonschemaValidator "github.com/kaptinlin/jsonschema"
	"github.com/spf13/cobra"

	"github.com/sagan/naimeta/cmd"
	"github.com/sagan/naimeta/constants"
	"github.com/sagan/naimeta/features/export"
	"github.com/sagan/naimeta/features/imagemeta"
	"github.com/sagan/naimeta/features/library"
	"github.com/sagan/naimeta/util"
	"github.com/sagan/naimeta/util/helper"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON schema of naimeta outputs, or validate a file against it",
	Long: `Print the JSON schema of naimeta outputs:

- record: the output of "parse".
- image: a library image, the output of "image show".
- export: the document written by "export json".

With --validate, read the file (json / yaml / toml, by extension; "-" for stdin as json)
and check it against the schema instead.`,
	Args: cobra.NoArgs,
	RunE: doSchema,
}

var (
	flagType     string
	flagValidate string
	flagOutput   string
	flagForce    bool
)

var types = map[string]any{
	"record": &imagemeta.Record{},
	"image":  &library.Image{},
	"export": &export.Document{},
}

func doSchema(command *cobra.Command, args []string) error {
	target, ok := types[flagType]
	if !ok {
		return fmt.Errorf("invalid --type %q, must be one of %v", flagType, util.Keys(types))
	}
	reflector := &jsonschema.Reflector{DoNotReference: true}
	schemaBytes, err := json.MarshalIndent(reflector.Reflect(target), "", "  ")
	if err != nil {
		return err
	}
	if flagValidate == "" {
		if err := helper.CheckOutput(flagOutput, flagForce); err != nil {
			return err
		}
		return helper.WriteOutput(command.OutOrStdout(), flagOutput, append(schemaBytes, '\n'))
	}

	validator, err := jsonschemaValidator.NewCompiler().Compile(schemaBytes)
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	data, err := cmd.ReadInput(command, flagValidate)
	if err != nil {
		return err
	}
	contentType := "json"
	if ext := strings.ToLower(filepath.Ext(flagValidate)); slices.Contains(
		[]string{".json", ".yaml", ".yml", ".toml"}, ext) {
		contentType = ext
	}
	instance, err := util.Unmarshal(contentType, strings.NewReader(string(data)))
	if err != nil {
		return fmt.Errorf("parse %s: %w", flagValidate, err)
	}
	result := validator.Validate(instance)
	if !result.IsValid() {
		return fmt.Errorf("%s does not conform to %s schema: %s", flagValidate, flagType, util.ToJson(result))
	}
	fmt.Fprintf(command.OutOrStdout(), "%s: valid %s\n", flagValidate, flagType)
	return nil
}

func init() {
	schemaCmd.Flags().StringVarP(&flagType, "type", "t", "record",
		fmt.Sprintf("Schema of which output, one of %v", util.Keys(types)))
	schemaCmd.Flags().StringVarP(&flagValidate, "validate", "", "", `Validate this file ("-" for stdin)`)
	schemaCmd.Flags().StringVarP(&flagOutput, "output", "o", "-", constants.HELP_OUTPUT_FLAG)
	schemaCmd.Flags().BoolVarP(&flagForce, "force", "", false, constants.HELP_FORCE_FLAG)
	cmd.RootCmd.AddCommand(schemaCmd)
}
