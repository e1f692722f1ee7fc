package service

import "github.com/prometheus/client_golang/prometheus"

// PhotoMetrics counts photo uploads and deletions. A nil *PhotoMetrics records nothing.
type PhotoMetrics struct {
	uploads     *prometheus.CounterVec
	uploadBytes prometheus.Histogram
	deletes     prometheus.Counter
}

// NewPhotoMetrics creates the photo metrics and registers them with reg.
func NewPhotoMetrics(reg prometheus.Registerer) (*PhotoMetrics, error) {
	m := &PhotoMetrics{
		uploads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "photos_uploaded_total",
				Help: "Photo upload attempts by outcome.",
			},
			[]string{"result"},
		),
		uploadBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "photo_upload_bytes",
			Help:    "Size of stored photos in bytes.",
			Buckets: prometheus.ExponentialBuckets(64*1024, 2, 9),
		}),
		deletes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "photo_deletes_total",
			Help: "Photos deleted.",
		}),
	}
	for _, c := range []prometheus.Collector{m.uploads, m.uploadBytes, m.deletes} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *PhotoMetrics) uploaded(size int64) {
	if m == nil {
		return
	}
	m.uploads.WithLabelValues("stored").Inc()
	m.uploadBytes.Observe(float64(size))
}

func (m *PhotoMetrics) rejected(result string) {
	if m == nil {
		return
	}
	m.uploads.WithLabelValues(result).Inc()
}

func (m *PhotoMetrics) deleted() {
	if m == nil {
		return
	}
	m.deletes.Inc()
}
