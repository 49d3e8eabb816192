package cart

import (
	"reflect"
	"testing"

	"bookcart/internal/domain"
)

func merchA() domain.Merchandise {
	return domain.Merchandise{ID: "merch-a", Title: "Hardcover", SelectedOptions: []domain.SelectedOption{{Name: "Binding", Value: "Hardcover"}}}
}

func productA() domain.Product {
	return domain.Product{ID: "prod-a", Handle: "the-idiot", Title: "The Idiot"}
}

func merchB() domain.Merchandise {
	return domain.Merchandise{ID: "merch-b", Title: "Paperback"}
}

func productB() domain.Product {
	return domain.Product{ID: "prod-b", Handle: "demons", Title: "Demons"}
}

func inr(amount string) domain.Money {
	return domain.Money{Amount: amount, CurrencyCode: "INR"}
}

func TestApplyAddInsertsProvisionalLine(t *testing.T) {
	got := applyAdd(nil, merchA(), productA())
	if len(got.Lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(got.Lines))
	}
	line := got.Lines[0]
	if line.Quantity != 1 || got.TotalQuantity != 1 {
		t.Fatalf("unexpected quantities %+v", got)
	}
	if !isProvisionalID(line.ID) {
		t.Fatalf("expected provisional ID, got %q", line.ID)
	}
	if line.Cost.Known() {
		t.Fatalf("expected pending cost with no known unit price, got %+v", line.Cost)
	}
}

func TestApplyAddIncrementsAndDerivesCost(t *testing.T) {
	base := &domain.Cart{Lines: []domain.LineItem{{
		ID: "line-1", Quantity: 2, Cost: inr("480.00"), Merchandise: merchA(), Product: productA(),
	}}}
	got := applyAdd(base, merchA(), productA())
	if len(got.Lines) != 1 {
		t.Fatalf("expected a single line, got %d", len(got.Lines))
	}
	line := got.Lines[0]
	if line.Quantity != 3 || line.Cost.Amount != "720.00" {
		t.Fatalf("expected qty 3 cost 720.00, got %+v", line)
	}
	if got.TotalQuantity != 3 || got.Cost.TotalAmount.Amount != "720.00" {
		t.Fatalf("unexpected aggregates %+v", got)
	}
	if base.Lines[0].Quantity != 2 {
		t.Fatalf("input cart mutated: %+v", base.Lines[0])
	}
}

func TestApplyAddDistinctMerchandiseOnePerVariant(t *testing.T) {
	cart := applyAdd(nil, merchA(), productA())
	cart = applyAdd(cart, merchB(), productB())
	if len(cart.Lines) != 2 || cart.TotalQuantity != 2 {
		t.Fatalf("expected 2 lines total 2, got %+v", cart)
	}
	// Stable display order by product title, not insertion order.
	if cart.Lines[0].Product.Title != "Demons" || cart.Lines[1].Product.Title != "The Idiot" {
		t.Fatalf("unexpected order %q %q", cart.Lines[0].Product.Title, cart.Lines[1].Product.Title)
	}
}

func TestApplyAddRepeatedSameMerchandise(t *testing.T) {
	var cart *domain.Cart
	for i := 0; i < 5; i++ {
		cart = applyAdd(cart, merchA(), productA())
	}
	if len(cart.Lines) != 1 || cart.Lines[0].Quantity != 5 || cart.TotalQuantity != 5 {
		t.Fatalf("expected one line qty 5, got %+v", cart)
	}
}

func TestApplyDeltaRemovesAtZero(t *testing.T) {
	base := &domain.Cart{Lines: []domain.LineItem{{
		ID: "line-1", Quantity: 1, Cost: inr("240.00"), Merchandise: merchA(), Product: productA(),
	}}}
	got, tomb, err := applyDelta(base, "line-1", -1)
	if err != nil {
		t.Fatalf("applyDelta: %v", err)
	}
	if len(got.Lines) != 0 || got.TotalQuantity != 0 {
		t.Fatalf("expected empty cart, got %+v", got)
	}
	if tomb == nil || tomb.Quantity != 1 || tomb.Cost.Amount != "240.00" {
		t.Fatalf("unexpected tombstone %+v", tomb)
	}
}

func TestApplyDeltaAbsentLineRejected(t *testing.T) {
	base := &domain.Cart{}
	if _, _, err := applyDelta(base, "line-404", -1); !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, _, err := applyDelta(nil, "line-404", -1); !domain.IsValidation(err) {
		t.Fatalf("expected validation error on nil cart, got %v", err)
	}
}

func TestApplyDeltaBelowZeroRejected(t *testing.T) {
	base := &domain.Cart{Lines: []domain.LineItem{{
		ID: "line-1", Quantity: 1, Cost: inr("240.00"), Merchandise: merchA(), Product: productA(),
	}}}
	if _, _, err := applyDelta(base, "line-1", -2); !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if base.Lines[0].Quantity != 1 {
		t.Fatalf("state changed on rejected mutation: %+v", base.Lines[0])
	}
}

func TestApplyDeltaRecomputesFromUnitPrice(t *testing.T) {
	base := &domain.Cart{Lines: []domain.LineItem{{
		ID: "line-1", Quantity: 2, Cost: inr("480.00"), Merchandise: merchA(), Product: productA(),
	}}}
	got, tomb, err := applyDelta(base, "line-1", 1)
	if err != nil || tomb != nil {
		t.Fatalf("applyDelta: %v %+v", err, tomb)
	}
	if got.Lines[0].Quantity != 3 || got.Lines[0].Cost.Amount != "720.00" {
		t.Fatalf("expected qty 3 cost 720.00, got %+v", got.Lines[0])
	}
}

func TestApplyRemoveAndRestore(t *testing.T) {
	base := &domain.Cart{Lines: []domain.LineItem{{
		ID: "line-1", Quantity: 2, Cost: inr("480.00"), Merchandise: merchA(), Product: productA(),
	}}}
	got, tomb, err := applyRemove(base, "line-1")
	if err != nil {
		t.Fatalf("applyRemove: %v", err)
	}
	if len(got.Lines) != 0 {
		t.Fatalf("expected line removed, got %+v", got)
	}

	restored := restoreLine(got, *tomb)
	if len(restored.Lines) != 1 {
		t.Fatalf("expected line restored, got %+v", restored)
	}
	if !reflect.DeepEqual(restored.Lines[0], base.Lines[0]) {
		t.Fatalf("restored line differs: %+v vs %+v", restored.Lines[0], base.Lines[0])
	}
	if restored.TotalQuantity != 2 || restored.Cost.TotalAmount.Amount != "480.00" {
		t.Fatalf("unexpected aggregates %+v", restored)
	}
}

func TestRevertAddComposesWithLaterState(t *testing.T) {
	cart := applyAdd(nil, merchA(), productA())
	cart = applyAdd(cart, merchA(), productA())

	reverted := revertAdd(cart, "merch-a")
	if len(reverted.Lines) != 1 || reverted.Lines[0].Quantity != 1 {
		t.Fatalf("expected qty back to 1, got %+v", reverted)
	}

	reverted = revertAdd(reverted, "merch-a")
	if len(reverted.Lines) != 0 {
		t.Fatalf("expected line dropped at zero, got %+v", reverted)
	}

	// Reverting against a cart that lost the line meanwhile is a no-op.
	if got := revertAdd(reverted, "merch-a"); len(got.Lines) != 0 {
		t.Fatalf("expected no-op revert, got %+v", got)
	}
}

func TestRevertDeltaRestoresTombstone(t *testing.T) {
	base := &domain.Cart{Lines: []domain.LineItem{{
		ID: "line-1", Quantity: 1, Cost: inr("240.00"), Merchandise: merchA(), Product: productA(),
	}}}
	got, tomb, err := applyDelta(base, "line-1", -1)
	if err != nil {
		t.Fatalf("applyDelta: %v", err)
	}
	reverted := revertDelta(got, "merch-a", -1, tomb)
	if len(reverted.Lines) != 1 || reverted.Lines[0].Quantity != 1 || reverted.Lines[0].Cost.Amount != "240.00" {
		t.Fatalf("unexpected revert %+v", reverted)
	}
}

func TestReconcileOverwritesProvisionalLine(t *testing.T) {
	local := applyAdd(nil, merchA(), productA())
	confirmed := &domain.Cart{
		ID: "cart-1",
		Lines: []domain.LineItem{{
			ID: "line-real", Quantity: 1, Cost: inr("240.00"), Merchandise: merchA(), Product: productA(),
		}},
		TotalQuantity: 1,
		Cost: domain.CartCost{
			SubtotalAmount: inr("240.00"),
			TotalAmount:    inr("240.00"),
			TotalTaxAmount: inr("0.00"),
		},
	}

	got := reconcileLine(local, confirmed, "merch-a")
	if got.ID != "cart-1" {
		t.Fatalf("cart ID not adopted: %+v", got)
	}
	line := got.Lines[0]
	if line.ID != "line-real" || line.Cost.Amount != "240.00" || line.Quantity != 1 {
		t.Fatalf("provisional line not fully overwritten: %+v", line)
	}
	if got.Cost.TotalAmount.Amount != "240.00" || got.TotalQuantity != 1 {
		t.Fatalf("unexpected aggregates %+v", got.Cost)
	}

	// Idempotence: applying the same confirmation twice changes nothing.
	again := reconcileLine(got, confirmed, "merch-a")
	if !reflect.DeepEqual(again, got) {
		t.Fatalf("reconciliation not idempotent:\n%+v\n%+v", again, got)
	}
}

func TestReconcileAdoptsBulkDiscountCost(t *testing.T) {
	// Optimistic: qty 3 at derived unit price 240 = 720.
	local := &domain.Cart{Lines: []domain.LineItem{{
		ID: "line-1", Quantity: 3, Cost: inr("720.00"), Merchandise: merchA(), Product: productA(),
	}}}
	finalize(local)

	confirmed := &domain.Cart{ID: "cart-1", Lines: []domain.LineItem{{
		ID: "line-1", Quantity: 3, Cost: inr("700.00"), Merchandise: merchA(), Product: productA(),
	}}}

	got := reconcileLine(local, confirmed, "merch-a")
	if got.Lines[0].Quantity != 3 || got.Lines[0].Cost.Amount != "700.00" {
		t.Fatalf("expected backend cost 700.00 at qty 3, got %+v", got.Lines[0])
	}
}

func TestReconcileKeepsLaterOptimisticQuantity(t *testing.T) {
	// A second +1 was applied locally while the first confirmation was in
	// flight: requested quantities must not regress.
	local := &domain.Cart{Lines: []domain.LineItem{{
		ID: "line-1", Quantity: 4, Cost: inr("960.00"), Merchandise: merchA(), Product: productA(),
	}}}
	finalize(local)

	confirmed := &domain.Cart{ID: "cart-1", Lines: []domain.LineItem{{
		ID: "line-1", Quantity: 3, Cost: inr("720.00"), Merchandise: merchA(), Product: productA(),
	}}}

	got := reconcileLine(local, confirmed, "merch-a")
	if got.Lines[0].Quantity != 4 {
		t.Fatalf("quantity regressed: %+v", got.Lines[0])
	}
	if got.Lines[0].Cost.Amount != "960.00" {
		t.Fatalf("expected confirmed unit price rescaled to 960.00, got %+v", got.Lines[0])
	}
}

func TestReconcileOmittedLineTreatedAsRemoved(t *testing.T) {
	local := &domain.Cart{Lines: []domain.LineItem{{
		ID: "line-1", Quantity: 1, Cost: inr("240.00"), Merchandise: merchA(), Product: productA(),
	}}}
	finalize(local)

	confirmed := &domain.Cart{ID: "cart-1"}
	got := reconcileLine(local, confirmed, "merch-a")
	if len(got.Lines) != 0 || got.TotalQuantity != 0 {
		t.Fatalf("expected omitted line removed, got %+v", got)
	}
}

func TestReconcileOmittedLineKeepsProvisionalReAdd(t *testing.T) {
	// The merchandise was re-added while its removal was in flight; the
	// removal's confirmation omits the line, but the provisional re-add is
	// still awaiting its own confirmation and must survive.
	local := &domain.Cart{Lines: []domain.LineItem{{
		ID: provisionalLineID(), Quantity: 1, Merchandise: merchA(), Product: productA(),
	}}}
	finalize(local)

	confirmed := &domain.Cart{ID: "cart-1"}
	got := reconcileLine(local, confirmed, "merch-a")
	line := got.LineByMerchandise("merch-a")
	if line == nil || line.Quantity != 1 {
		t.Fatalf("provisional re-add dropped: %+v", got)
	}
	if !isProvisionalID(line.ID) {
		t.Fatalf("expected line to stay provisional, got %q", line.ID)
	}
}

func TestReconcileDoesNotResurrectRemovedLine(t *testing.T) {
	// The line was optimistically removed after the add was dispatched; the
	// add's confirmation must not bring it back.
	local := &domain.Cart{}
	confirmed := &domain.Cart{ID: "cart-1", Lines: []domain.LineItem{{
		ID: "line-1", Quantity: 1, Cost: inr("240.00"), Merchandise: merchA(), Product: productA(),
	}}}
	got := reconcileLine(local, confirmed, "merch-a")
	if len(got.Lines) != 0 {
		t.Fatalf("removed line resurrected: %+v", got)
	}
}

func TestFinalizeSkipsPendingCosts(t *testing.T) {
	cart := &domain.Cart{Lines: []domain.LineItem{
		{ID: "line-1", Quantity: 2, Cost: inr("480.00"), Merchandise: merchA(), Product: productA()},
		{ID: "line-2", Quantity: 1, Merchandise: merchB(), Product: productB()},
	}}
	finalize(cart)
	if cart.TotalQuantity != 3 {
		t.Fatalf("total quantity = %d, want 3", cart.TotalQuantity)
	}
	if cart.Cost.SubtotalAmount.Amount != "480.00" || cart.Cost.SubtotalAmount.CurrencyCode != "INR" {
		t.Fatalf("unexpected subtotal %+v", cart.Cost.SubtotalAmount)
	}
}

func TestFinalizeAddsTaxToTotal(t *testing.T) {
	cart := &domain.Cart{
		Lines: []domain.LineItem{
			{ID: "line-1", Quantity: 1, Cost: inr("240.00"), Merchandise: merchA(), Product: productA()},
		},
		Cost: domain.CartCost{TotalTaxAmount: inr("43.20")},
	}
	finalize(cart)
	if cart.Cost.TotalAmount.Amount != "283.20" {
		t.Fatalf("total = %s, want 283.20", cart.Cost.TotalAmount.Amount)
	}
}
