package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"psyjaciele/internal/client"

	"github.com/spf13/cobra"
)

var (
	listJSON bool

	reportDescription string
	reportAddress     string
	reportLat         float64
	reportLng         float64
	reportDate        string
	reportTime        string
	reportDog         string
	reportReporter    string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Lista los incidentes (del server o, sin conexión, los guardados localmente)",
	Long: `Lista los incidentes.

Si el server responde se muestra solo su lista. Los reportes hechos sin sesión
quedan guardados en este equipo (no se suben ni se borran) y se listan cuando
el server no responde.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		list := cli.cache.Incidents()
		if listJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(list)
		}

		fmt.Printf("source: %s, %d incidents\n", cli.cache.Source(), len(list))
		tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tDATE\tSTATUS\tHELPFUL\tLOCATION\tDESCRIPTION")
		for _, inc := range list {
			fmt.Fprintf(tw, "%s\t%s %s\t%s\t%d\t%s\t%s\n",
				inc.ID, inc.Date, inc.Time, inc.Status, inc.HelpfulCount,
				inc.Location.Address, truncate(inc.Description, 48))
		}
		return tw.Flush()
	},
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Reporta un envenenamiento",
	Long: `Reporta un envenenamiento.

Con sesión iniciada el reporte va al server y queda pendiente de moderación.
Sin sesión (o sin conexión) se guarda solo en este equipo: no se sube al
server, ni siquiera al iniciar sesión después, y "list" lo muestra únicamente
cuando el server no responde.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		in := client.CreateInput{
			Description:  reportDescription,
			Location:     client.Location{Address: reportAddress},
			Date:         reportDate,
			Time:         reportTime,
			DogName:      reportDog,
			ReporterName: reportReporter,
		}
		if cmd.Flags().Changed("lat") || cmd.Flags().Changed("lng") {
			lat, lng := reportLat, reportLng
			in.Location.Latitude = &lat
			in.Location.Longitude = &lng
		}

		inc, err := cli.cache.Create(cmd.Context(), in)
		if err != nil {
			return err
		}
		fmt.Printf("reported %s (status %s)\n", inc.ID, inc.Status)
		return nil
	},
}

var helpfulCmd = &cobra.Command{
	Use:   "helpful <id>",
	Short: "Marca un incidente como útil",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		inc, err := cli.cache.MarkHelpful(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("%s helpful_count=%d\n", inc.ID, inc.HelpfulCount)
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Total de reportes, últimos 7 y 30 días",
	RunE: func(cmd *cobra.Command, args []string) error {
		st := cli.cache.Stats()
		fmt.Printf("total: %d\nlast 7 days: %d\nlast 30 days: %d\n", st.Total, st.Last7Days, st.Last30Days)
		return nil
	},
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len([]rune(s)) <= n {
		return s
	}
	return string([]rune(s)[:n-1]) + "…"
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "salida JSON")

	now := time.Now()
	reportCmd.Flags().StringVarP(&reportDescription, "description", "d", "", "qué pasó (obligatorio)")
	reportCmd.Flags().StringVarP(&reportAddress, "address", "a", "", "dirección o lugar (obligatorio)")
	reportCmd.Flags().Float64Var(&reportLat, "lat", 0, "latitud")
	reportCmd.Flags().Float64Var(&reportLng, "lng", 0, "longitud")
	reportCmd.Flags().StringVar(&reportDate, "date", now.Format("2006-01-02"), "fecha YYYY-MM-DD")
	reportCmd.Flags().StringVar(&reportTime, "time", now.Format("15:04"), "hora HH:MM")
	reportCmd.Flags().StringVar(&reportDog, "dog", "", "nombre del perro")
	reportCmd.Flags().StringVar(&reportReporter, "reporter", "", "tu nombre (por defecto Anonymous)")

	rootCmd.AddCommand(listCmd, reportCmd, helpfulCmd, statsCmd)
}
