package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/miekg/dns"
	"github.com/spf13/cobra"
)

func newQueryCommand() *cobra.Command {
	var (
		server  string
		qtype   string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "query <name>",
		Short: "Query a running space-dns daemon",
		Long: `Send a DNS query to a running space-dns daemon and print the answers.

Useful for checking what the daemon (and its cache) returns without
reaching for dig. The reported TTL of a cached answer is the remaining
TTL, so asking twice shows the cache counting down.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := parseRecordType(qtype)
			if err != nil {
				return err
			}

			m := new(dns.Msg)
			m.SetQuestion(dns.Fqdn(args[0]), t)
			m.RecursionDesired = true

			c := new(dns.Client)
			c.Timeout = timeout

			resp, rtt, err := c.Exchange(m, server)
			if err != nil {
				return fmt.Errorf("query failed: %w", err)
			}

			if resp.Rcode != dns.RcodeSuccess {
				fmt.Printf("❌ %s (%s)\n", dns.RcodeToString[resp.Rcode], rtt.Round(time.Millisecond))
				return nil
			}

			if len(resp.Answer) == 0 {
				fmt.Printf("ℹ️  No answers (%s)\n", rtt.Round(time.Millisecond))
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "NAME\tTTL\tTYPE\tDATA")
			for _, rr := range resp.Answer {
				hdr := rr.Header()
				fmt.Fprintf(w, "%s\t%d\t%s\t%s\n",
					hdr.Name,
					hdr.Ttl,
					dns.TypeToString[hdr.Rrtype],
					recordData(rr),
				)
			}
			w.Flush()
			fmt.Printf("\n⏱  %s\n", rtt.Round(time.Millisecond))

			return nil
		},
	}

	cmd.Flags().StringVarP(&server, "server", "s", "127.0.0.1:5353", "daemon address to query")
	cmd.Flags().StringVarP(&qtype, "type", "t", "A", "record type (A, AAAA, MX, ...)")
	cmd.Flags().DurationVar(&timeout, "timeout", 2*time.Second, "query timeout")

	return cmd
}

// parseRecordType maps a type name like "A" or "AAAA" to its wire value
func parseRecordType(s string) (uint16, error) {
	t, ok := dns.StringToType[strings.ToUpper(strings.TrimSpace(s))]
	if !ok {
		return 0, fmt.Errorf("unknown record type %q", s)
	}
	return t, nil
}

// recordData renders the value part of a resource record
func recordData(rr dns.RR) string {
	switch r := rr.(type) {
	case *dns.A:
		return r.A.String()
	case *dns.AAAA:
		return r.AAAA.String()
	case *dns.CNAME:
		return r.Target
	}
	// Fall back to the presentation format minus the header prefix.
	s := rr.String()
	if i := strings.LastIndex(s, "\t"); i >= 0 {
		return s[i+1:]
	}
	return s
}
