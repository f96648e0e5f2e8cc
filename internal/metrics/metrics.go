package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	Bookings = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "gym_bookings_total",
			Help: "Number of accepted class bookings",
		},
	)

	BookingRejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gym_booking_rejections_total",
			Help: "Number of rejected class bookings by reason",
		},
		[]string{"reason"},
	)

	Cancellations = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "gym_booking_cancellations_total",
			Help: "Number of booking cancellations",
		},
	)

	Registrations = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "gym_competition_registrations_total",
			Help: "Number of accepted competition registrations",
		},
	)

	RegistrationRejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gym_competition_rejections_total",
			Help: "Number of rejected competition registrations by reason",
		},
		[]string{"reason"},
	)

	PaymentReviews = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gym_payment_reviews_total",
			Help: "Number of reviewed payment reports by outcome",
		},
		[]string{"outcome"},
	)
)

func Register() {
	prometheus.MustRegister(
		Bookings,
		BookingRejections,
		Cancellations,
		Registrations,
		RegistrationRejections,
		PaymentReviews,
	)
}
