package resources

import (
	"fmt"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
)

// MinifyCSS strips whitespace and redundant syntax from a stylesheet.
func MinifyCSS(src []byte) ([]byte, error) {
	result := api.Transform(string(src), api.TransformOptions{
		Loader:           api.LoaderCSS,
		MinifyWhitespace: true,
		MinifySyntax:     true,
		LogLevel:         api.LogLevelSilent,
	})

	if len(result.Errors) > 0 {
		var msgs []string
		for _, err := range result.Errors {
			loc := ""
			if err.Location != nil {
				loc = fmt.Sprintf("%d:%d: ", err.Location.Line, err.Location.Column)
			}
			msgs = append(msgs, loc+err.Text)
		}
		return nil, fmt.Errorf("esbuild errors:\n%s", strings.Join(msgs, "\n"))
	}
	return result.Code, nil
}
