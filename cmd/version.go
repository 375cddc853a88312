package cmd

import (
	"os"
	"runtime"
	"text/template"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/tilawah-cli/tilawah/color"
	"github.com/tilawah-cli/tilawah/constant"
	"github.com/tilawah-cli/tilawah/style"
	"github.com/tilawah-cli/tilawah/version"
)

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.SetOut(os.Stdout)
	versionCmd.Flags().BoolP("short", "s", false, "Only print the version number")
}

var versionTemplate = template.Must(template.New("version").Funcs(template.FuncMap{
	"faint": style.Faint,
	"bold":  style.Bold,
	"gold":  style.Fg(color.Gold),
}).Parse(`{{ gold "▇▇▇" }} {{ gold .App }}

  {{ faint "Version" }}   {{ bold .Version }}
  {{ faint "Go" }}        {{ bold .Go }}
  {{ faint "Platform" }}  {{ bold .OS }}/{{ bold .Arch }}
`))

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version and platform",
	Run: func(cmd *cobra.Command, args []string) {
		if lo.Must(cmd.Flags().GetBool("short")) {
			cmd.Println(constant.Version)
			return
		}

		defer version.Notify(cmd.Context())

		handleErr(versionTemplate.Execute(cmd.OutOrStdout(), struct {
			App, Version, Go, OS, Arch string
		}{
			App:     constant.Tilawah,
			Version: constant.Version,
			Go:      runtime.Version(),
			OS:      runtime.GOOS,
			Arch:    runtime.GOARCH,
		}))
	},
}
