package domain

type Product struct {
	ID             string  `db:"id"`
	Name           string  `db:"name"`
	Description    string  `db:"description"`
	Price          float64 `db:"price"`
	StockQuantity  int     `db:"stock_quantity"`
	TrackInventory bool    `db:"track_inventory"`
	AllowBackorder bool    `db:"allow_backorder"`
	Active         bool    `db:"active"`
	CreatedAt      string  `db:"created_at"`
	UpdatedAt      string  `db:"updated_at"`
}

// ReservationLine records one successful stock decrement within a
// reservation attempt. Lines are ephemeral: they exist only to drive
// release/rollback and are never persisted.
type ReservationLine struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// OrderItem's Reserved field records how much stock the reservation
// actually decremented (less than Quantity when part of the line was
// backordered, zero for untracked products), so cancellation can restore
// exactly that amount.
type OrderItem struct {
	ProductID string  `db:"product_id" json:"productId"`
	Name      string  `db:"name" json:"name"`
	Quantity  int     `db:"qty" json:"quantity"`
	UnitPrice float64 `db:"unit_price" json:"unitPrice"`
	Reserved  int     `db:"reserved" json:"reservedQuantity"`
}

// StatusEntry is one row of an order's status history. Timestamps are
// RFC3339 strings supplied by the service clock.
type StatusEntry struct {
	Status    OrderStatus `db:"status" json:"status"`
	Timestamp string      `db:"created_at" json:"timestamp"`
	Actor     string      `db:"actor" json:"actor"`
	Comment   string      `db:"comment" json:"comment,omitempty"`
}

type Order struct {
	ID             string         `json:"id"`
	UserID         string         `json:"userId"`
	Status         OrderStatus    `json:"status"`
	TotalAmount    float64        `json:"totalAmount"`
	ShippingMethod string         `json:"shippingMethod"`
	Items          []OrderItem    `json:"items"`
	StatusHistory  []StatusEntry  `json:"statusHistory"`
	Risk           RiskAssessment `json:"riskAssessment"`
	CancelReason   string         `json:"cancelReason,omitempty"`
	CancelledAt    string         `json:"cancelledAt,omitempty"`
	CreatedAt      string         `json:"createdAt"`
}

type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// RiskAssessment is computed once when the order is created and never
// recomputed afterwards.
type RiskAssessment struct {
	RiskScore      int       `json:"riskScore"`
	RiskLevel      RiskLevel `json:"riskLevel"`
	RiskFactors    []string  `json:"riskFactors"`
	RequiresReview bool      `json:"requiresReview"`
}

type Availability struct {
	Status string `json:"status"` // IN_STOCK | LOW_STOCK | OUT_OF_STOCK | BACKORDER
	Qty    int    `json:"qty"`
}
