package services

import "github.com/prometheus/client_golang/prometheus"

var (
	loginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "apple_market_logins_total",
			Help: "Login attempts by result.",
		},
		[]string{"result"}, // success | failure
	)

	productsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "apple_market_products_created_total",
			Help: "Product listings created.",
		},
	)

	productsDeleted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "apple_market_products_deleted_total",
			Help: "Product listings deleted.",
		},
	)

	imagesStored = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "apple_market_images_stored_total",
			Help: "Product photos written to the upload directory.",
		},
	)

	messagesPosted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "apple_market_messages_posted_total",
			Help: "Chat messages posted by sender.",
		},
		[]string{"sender"},
	)
)

func init() {
	prometheus.MustRegister(loginsTotal, productsCreated, productsDeleted, imagesStored, messagesPosted)
}
