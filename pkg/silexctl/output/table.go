package output

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/opensilex/silexctl/pkg/silexctl/auth"
	"github.com/opensilex/silexctl/pkg/silexctl/client"
)

func WriteExperimentTable(w io.Writer, experiments []client.Experiment) {
	tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "URI\tNAME\tOBJECTIVE\tSTART\tEND")
	for _, e := range experiments {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", e.URI, e.Name, truncate(e.Objective, 40), orDash(e.StartDate), orDash(e.EndDate))
	}
	_ = tw.Flush()
}

func WriteVariableTable(w io.Writer, variables []client.Variable) {
	tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "URI\tNAME\tENTITY\tCHARACTERISTIC\tMETHOD\tUNIT")
	for _, v := range variables {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			v.URI, v.Name, namedOrDash(v.Entity), namedOrDash(v.Characteristic), namedOrDash(v.Method), namedOrDash(v.Unit))
	}
	_ = tw.Flush()
}

func WriteScientificObjectTable(w io.Writer, objects []client.ScientificObject) {
	tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "URI\tNAME\tTYPE")
	for _, o := range objects {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", o.URI, o.Name, orDash(o.Type))
	}
	_ = tw.Flush()
}

// WriteTokenStatus prints the active credential in key/value form.
func WriteTokenStatus(w io.Writer, backend auth.Backend, cred auth.Credential) {
	tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
	_, _ = fmt.Fprintf(tw, "BACKEND\t%s\n", backend)
	if cred.Username != "" {
		_, _ = fmt.Fprintf(tw, "USER\t%s\n", cred.Username)
	}
	if cred.Email != "" {
		_, _ = fmt.Fprintf(tw, "EMAIL\t%s\n", cred.Email)
	}
	_, _ = fmt.Fprintf(tw, "ISSUED\t%s\n", formatTime(cred.IssuedAt))
	_, _ = fmt.Fprintf(tw, "EXPIRES\t%s\n", formatTime(cred.ExpiresAt))
	refresh := "no"
	if cred.RefreshToken != "" {
		refresh = "yes"
	}
	_, _ = fmt.Fprintf(tw, "REFRESHABLE\t%s\n", refresh)
	_ = tw.Flush()
}

func namedOrDash(n *client.NamedResource) string {
	if n == nil || n.Name == "" {
		return "-"
	}
	return n.Name
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(time.RFC3339)
}
