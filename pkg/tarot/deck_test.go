package tarot

import "testing"

func TestDeckIntegrity(t *testing.T) {
	cards := Deck()
	if len(cards) != 22 {
		t.Fatalf("len(Deck()) = %d, want 22", len(cards))
	}
	seen := make(map[int]bool, len(cards))
	for _, c := range cards {
		if seen[c.ID] {
			t.Fatalf("duplicate card id %d", c.ID)
		}
		seen[c.ID] = true
		if c.Name == "" || c.NameTR == "" || c.MeaningUpright == "" || c.MeaningReversed == "" {
			t.Fatalf("incomplete card %d: %+v", c.ID, c)
		}
		if c.Suit != "major" {
			t.Fatalf("card %d suit = %q, want major", c.ID, c.Suit)
		}
	}
}

func TestDeckCopyIsolation(t *testing.T) {
	cards := Deck()
	cards[0].NameTR = "mutated"
	if fresh, _ := Card(0); fresh.NameTR != "Deli" {
		t.Fatalf("deck was mutated through Deck() copy")
	}
}

func TestDrawThreeCard(t *testing.T) {
	for trial := 0; trial < 50; trial++ {
		drawn, err := Draw("three_card")
		if err != nil {
			t.Fatalf("draw: %v", err)
		}
		if len(drawn) != 3 {
			t.Fatalf("len(drawn) = %d, want 3", len(drawn))
		}
		seen := make(map[int]bool, 3)
		for _, dc := range drawn {
			if seen[dc.Card.ID] {
				t.Fatalf("duplicate card %d in spread", dc.Card.ID)
			}
			seen[dc.Card.ID] = true
		}
		wantPositions := []string{"Geçmiş", "Şimdi", "Gelecek"}
		for i, dc := range drawn {
			if dc.Position != wantPositions[i] {
				t.Fatalf("position[%d] = %q, want %q", i, dc.Position, wantPositions[i])
			}
		}
	}
}

func TestDrawSingle(t *testing.T) {
	drawn, err := Draw("single")
	if err != nil {
		t.Fatalf("draw: %v", err)
	}
	if len(drawn) != 1 {
		t.Fatalf("len(drawn) = %d, want 1", len(drawn))
	}
	if drawn[0].Position != "Genel" {
		t.Fatalf("position = %q, want Genel", drawn[0].Position)
	}
}

func TestDrawOrientationVaries(t *testing.T) {
	// 200 independent flips with no variation would be a broken RNG.
	sawUpright, sawReversed := false, false
	for trial := 0; trial < 200 && !(sawUpright && sawReversed); trial++ {
		drawn, err := Draw("single")
		if err != nil {
			t.Fatalf("draw: %v", err)
		}
		if drawn[0].Reversed {
			sawReversed = true
		} else {
			sawUpright = true
		}
	}
	if !sawUpright || !sawReversed {
		t.Fatalf("orientation never varied: upright=%v reversed=%v", sawUpright, sawReversed)
	}
}

func TestDrawRejectsUnknownSpread(t *testing.T) {
	if _, err := Draw("celtic_cross"); err != ErrUnknownSpread {
		t.Fatalf("err = %v, want ErrUnknownSpread", err)
	}
}
