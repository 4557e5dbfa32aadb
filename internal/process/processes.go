package process

// Process names supported concurrently by this marketplace.
const (
	NameBooking     = "default-booking"
	NamePurchase    = "default-purchase"
	NameInquiry     = "default-inquiry"
	NameNegotiation = "default-negotiation"
)

// States shared across the shipped processes. Not every process declares
// every state.
const (
	StateInitial        = "initial"
	StateInquiry        = "inquiry"
	StateFreeInquiry    = "free-inquiry"
	StatePendingPayment = "pending-payment"
	StatePaymentExpired = "payment-expired"
	StatePreauthorized  = "preauthorized"
	StateDeclined       = "declined"
	StateAccepted       = "accepted"
	StateCancelled      = "cancelled"
	StatePurchased      = "purchased"
	StateDelivered      = "delivered"
	StateReceived       = "received"
	StateOfferPending   = "offer-pending"
	StateOfferAccepted  = "offer-accepted"
	StateOfferRejected  = "offer-rejected"
	StateOfferExpired   = "offer-expired"
	StateReviewedByCustomer = "reviewed-by-customer"
	StateReviewedByProvider = "reviewed-by-provider"
	StateReviewed           = "reviewed"
)

// Transition names. The "transition/" prefix matches the wire names used by
// the transaction ledger.
const (
	TransitionInquire                    = "transition/inquire"
	TransitionRequestPayment             = "transition/request-payment"
	TransitionRequestPaymentAfterInquiry = "transition/request-payment-after-inquiry"
	TransitionConfirmPayment             = "transition/confirm-payment"
	TransitionExpirePayment              = "transition/expire-payment"
	TransitionAccept                     = "transition/accept"
	TransitionDecline                    = "transition/decline"
	TransitionExpire                     = "transition/expire"
	TransitionCancel                     = "transition/cancel"
	TransitionComplete                   = "transition/complete"
	TransitionMarkDelivered              = "transition/mark-delivered"
	TransitionOperatorMarkDelivered      = "transition/operator-mark-delivered"
	TransitionMarkReceived               = "transition/mark-received"
	TransitionAutoMarkReceived           = "transition/auto-mark-received"
	TransitionMakeOffer                  = "transition/make-offer"
	TransitionCounterOffer               = "transition/counter-offer"
	TransitionAcceptOffer                = "transition/accept-offer"
	TransitionRejectOffer                = "transition/reject-offer"
	TransitionExpireOffer                = "transition/expire-offer"
	TransitionReview1ByCustomer          = "transition/review-1-by-customer"
	TransitionReview1ByProvider          = "transition/review-1-by-provider"
	TransitionReview2ByCustomer          = "transition/review-2-by-customer"
	TransitionReview2ByProvider          = "transition/review-2-by-provider"
	TransitionExpireReviewPeriod         = "transition/expire-review-period"
)

var reviewTransitions = []Transition{
	{Name: TransitionReview1ByCustomer, Actor: ActorCustomer},
	{Name: TransitionReview1ByProvider, Actor: ActorProvider},
	{Name: TransitionReview2ByCustomer, Actor: ActorCustomer},
	{Name: TransitionReview2ByProvider, Actor: ActorProvider},
	{Name: TransitionExpireReviewPeriod, Actor: ActorSystem},
}

func reviewStates(entry string) map[string]map[string]string {
	return map[string]map[string]string{
		entry: {
			TransitionReview1ByCustomer:  StateReviewedByCustomer,
			TransitionReview1ByProvider:  StateReviewedByProvider,
			TransitionExpireReviewPeriod: StateReviewed,
		},
		StateReviewedByCustomer: {TransitionReview2ByProvider: StateReviewed},
		StateReviewedByProvider: {TransitionReview2ByCustomer: StateReviewed},
		StateReviewed:           {},
	}
}

func bookingDefinition() Definition {
	states := map[string]map[string]string{
		StateInitial: {
			TransitionInquire:        StateInquiry,
			TransitionRequestPayment: StatePendingPayment,
		},
		StateInquiry: {
			TransitionRequestPaymentAfterInquiry: StatePendingPayment,
		},
		StatePendingPayment: {
			TransitionExpirePayment:  StatePaymentExpired,
			TransitionConfirmPayment: StatePreauthorized,
		},
		StatePaymentExpired: {},
		StatePreauthorized: {
			TransitionAccept:  StateAccepted,
			TransitionDecline: StateDeclined,
			TransitionExpire:  StateDeclined,
		},
		StateDeclined: {},
		StateAccepted: {
			TransitionComplete: StateDelivered,
			TransitionCancel:   StateCancelled,
		},
		StateCancelled: {},
	}
	for state, edges := range reviewStates(StateDelivered) {
		states[state] = edges
	}
	return Definition{
		Name:         NameBooking,
		InitialState: StateInitial,
		States:       states,
		Transitions: append([]Transition{
			{Name: TransitionInquire, Actor: ActorCustomer},
			{Name: TransitionRequestPayment, Actor: ActorCustomer, Privileged: true},
			{Name: TransitionRequestPaymentAfterInquiry, Actor: ActorCustomer, Privileged: true},
			{Name: TransitionConfirmPayment, Actor: ActorCustomer, Privileged: true},
			{Name: TransitionExpirePayment, Actor: ActorSystem},
			{Name: TransitionAccept, Actor: ActorProvider},
			{Name: TransitionDecline, Actor: ActorProvider},
			{Name: TransitionExpire, Actor: ActorSystem},
			{Name: TransitionComplete, Actor: ActorSystem},
			{Name: TransitionCancel, Actor: ActorOperator},
		}, reviewTransitions...),
		CustomerAttention: []string{StateDelivered, StateReviewedByProvider},
		ProviderAttention: []string{StatePreauthorized, StateDelivered, StateReviewedByCustomer},
	}
}

func purchaseDefinition() Definition {
	states := map[string]map[string]string{
		StateInitial: {
			TransitionInquire:        StateInquiry,
			TransitionRequestPayment: StatePendingPayment,
		},
		StateInquiry: {
			TransitionRequestPaymentAfterInquiry: StatePendingPayment,
		},
		StatePendingPayment: {
			TransitionExpirePayment:  StatePaymentExpired,
			TransitionConfirmPayment: StatePurchased,
		},
		StatePaymentExpired: {},
		StatePurchased: {
			TransitionMarkDelivered:         StateDelivered,
			TransitionOperatorMarkDelivered: StateDelivered,
			TransitionCancel:                StateCancelled,
		},
		StateCancelled: {},
		StateDelivered: {
			TransitionMarkReceived:     StateReceived,
			TransitionAutoMarkReceived: StateReceived,
		},
	}
	for state, edges := range reviewStates(StateReceived) {
		states[state] = edges
	}
	return Definition{
		Name:         NamePurchase,
		InitialState: StateInitial,
		States:       states,
		Transitions: append([]Transition{
			{Name: TransitionInquire, Actor: ActorCustomer},
			{Name: TransitionRequestPayment, Actor: ActorCustomer, Privileged: true},
			{Name: TransitionRequestPaymentAfterInquiry, Actor: ActorCustomer, Privileged: true},
			{Name: TransitionConfirmPayment, Actor: ActorCustomer, Privileged: true},
			{Name: TransitionExpirePayment, Actor: ActorSystem},
			{Name: TransitionMarkDelivered, Actor: ActorProvider},
			{Name: TransitionOperatorMarkDelivered, Actor: ActorOperator},
			{Name: TransitionMarkReceived, Actor: ActorCustomer},
			{Name: TransitionAutoMarkReceived, Actor: ActorSystem},
			{Name: TransitionCancel, Actor: ActorOperator},
		}, reviewTransitions...),
		CustomerAttention: []string{StateDelivered, StateReviewedByProvider},
		ProviderAttention: []string{StatePurchased, StateReviewedByCustomer},
	}
}

func inquiryDefinition() Definition {
	return Definition{
		Name:         NameInquiry,
		InitialState: StateInitial,
		States: map[string]map[string]string{
			StateInitial:     {TransitionInquire: StateFreeInquiry},
			StateFreeInquiry: {},
		},
		Transitions: []Transition{
			{Name: TransitionInquire, Actor: ActorCustomer},
		},
		ProviderAttention: []string{StateFreeInquiry},
	}
}

func negotiationDefinition() Definition {
	return Definition{
		Name:         NameNegotiation,
		InitialState: StateInitial,
		States: map[string]map[string]string{
			StateInitial: {TransitionInquire: StateInquiry},
			StateInquiry: {TransitionMakeOffer: StateOfferPending},
			StateOfferPending: {
				TransitionCounterOffer: StateOfferPending,
				TransitionAcceptOffer:  StateOfferAccepted,
				TransitionRejectOffer:  StateOfferRejected,
				TransitionExpireOffer:  StateOfferExpired,
			},
			StateOfferAccepted: {TransitionRequestPayment: StatePendingPayment},
			StateOfferRejected: {},
			StateOfferExpired:  {},
			StatePendingPayment: {
				TransitionExpirePayment:  StatePaymentExpired,
				TransitionConfirmPayment: StatePurchased,
			},
			StatePaymentExpired: {},
			StatePurchased:      {},
		},
		Transitions: []Transition{
			{Name: TransitionInquire, Actor: ActorCustomer},
			{Name: TransitionMakeOffer, Actor: ActorProvider},
			{Name: TransitionCounterOffer, Actor: ActorCustomer},
			{Name: TransitionAcceptOffer, Actor: ActorCustomer},
			{Name: TransitionRejectOffer, Actor: ActorCustomer},
			{Name: TransitionExpireOffer, Actor: ActorSystem},
			{Name: TransitionRequestPayment, Actor: ActorCustomer, Privileged: true},
			{Name: TransitionConfirmPayment, Actor: ActorCustomer, Privileged: true},
			{Name: TransitionExpirePayment, Actor: ActorSystem},
		},
		CustomerAttention: []string{StateOfferPending},
		ProviderAttention: []string{StateInquiry, StatePurchased},
	}
}

// BuildDefaultRegistry constructs the registry of all shipped processes.
func BuildDefaultRegistry() (*Registry, error) {
	defs := []Definition{
		bookingDefinition(),
		purchaseDefinition(),
		inquiryDefinition(),
		negotiationDefinition(),
	}
	graphs := make([]*Graph, 0, len(defs))
	for _, def := range defs {
		g, err := New(def)
		if err != nil {
			return nil, err
		}
		graphs = append(graphs, g)
	}
	return NewRegistry(graphs...)
}
