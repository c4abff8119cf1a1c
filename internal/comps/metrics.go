package comps

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// importedRows tracks imported comp rows by source sheet.
var importedRows = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "comps_imported_rows_total",
	Help: "Total number of comparable sale rows imported by source",
}, []string{"source"})

func recordImport(source string, count int) {
	importedRows.WithLabelValues(source).Add(float64(count))
}
