package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rezonia/moadian/internal/taxid"
)

var verifyCmd = &cobra.Command{
	Use:   "verify [taxid...]",
	Short: "Verify tax identifiers",
	Long: `Verify the structure and check digit of one or more tax
identifiers.

Exits non-zero if any identifier is invalid.

Examples:
  moadian verify A3NFZT04CDB1CBE991A149`,
	Args: cobra.MinimumNArgs(1),
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	invalid := 0
	for _, id := range args {
		valid := taxid.Verify(id)
		if !valid {
			invalid++
		}
		fmt.Printf("%s\t%v\n", id, valid)
	}

	if invalid > 0 {
		return fmt.Errorf("%d invalid identifier(s)", invalid)
	}
	return nil
}
