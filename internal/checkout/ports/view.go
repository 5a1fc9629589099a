package ports

// Field names a form control on the checkout page.
type Field string

const (
	FieldPaymentMethod  Field = "payment_method"
	FieldShippingMethod Field = "shipping_method"
	FieldCardholderName Field = "cardholder_name"
	FieldCardNumber     Field = "card_number"
	FieldCardExpiry     Field = "card_expiry"
	FieldCardCVC        Field = "card_cvc"
	FieldPhone          Field = "shipping_phone"
	FieldPostalCode     Field = "shipping_postal_code"

	// FieldForm receives submit events for the form as a whole.
	FieldForm Field = "form"
)

// CardFields are the inputs inside the card details group.
var CardFields = []Field{FieldCardholderName, FieldCardNumber, FieldCardExpiry, FieldCardCVC}

// Group names a container of fields that is shown or hidden as a unit.
type Group string

const GroupCardInfo Group = "card-info-fields"

// Slot names a text element of the order summary.
type Slot string

const (
	SlotSubtotal    Slot = "subtotal"
	SlotDeliveryFee Slot = "delivery-fee"
	SlotTaxAmount   Slot = "tax-amount"
	SlotOrderTotal  Slot = "order-total"
)

// EventKind is the kind of user interaction delivered to a handler.
type EventKind string

const (
	EventChange   EventKind = "change"
	EventInput    EventKind = "input"
	EventBlur     EventKind = "blur"
	EventKeyPress EventKind = "keypress"
	EventSubmit   EventKind = "submit"
)

// Event is a single interaction. Handlers call PreventDefault to suppress
// the default action (a keypress reaching the field, a form submission).
type Event struct {
	Kind  EventKind
	Field Field
	Key   string

	prevented bool
}

func (e *Event) PreventDefault() {
	e.prevented = true
}

func (e *Event) DefaultPrevented() bool {
	return e.prevented
}

// Handler reacts to an event on a field.
type Handler func(ev *Event)

// View abstracts the rendered checkout page so the controller can run without a document tree.
type View interface {
	Value(f Field) string
	SetValue(f Field, value string)

	Required(f Field) bool
	SetRequired(f Field, required bool)

	// Validity returns the custom validation message; empty means valid.
	Validity(f Field) string
	SetValidity(f Field, message string)

	SetGroupVisible(g Group, visible bool)

	Text(s Slot) string
	SetText(s Slot, text string)

	On(f Field, kind EventKind, h Handler)
}
