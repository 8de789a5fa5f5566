package model

// MenuItem is one dish on a dining-hall menu, already normalized from the
// vendor's wire format (nested nutrition object flattened, tagged allergen
// objects collapsed to name strings, bookkeeping fields dropped).
//
// MenuItems are transient: fetched per request, optionally held in a
// short-TTL cache, never persisted. Logging one into the journal copies its
// nutrition values into a JournalEntry snapshot.
type MenuItem struct {
	Name        string   `json:"name"`
	Station     string   `json:"station"`
	DiningHall  string   `json:"diningHall"`
	Meal        MealType `json:"meal"`
	Date        string   `json:"date"` // "YYYY-MM-DD"
	Allergens   []string `json:"allergens"`
	Preferences []string `json:"preferences"` // vendor dietary tags, e.g. "Vegan"
	Calories    float64  `json:"calories"`
	ProteinG    float64  `json:"proteinG"`
	CarbsG      float64  `json:"carbsG"`
	FatG        float64  `json:"fatG"`
}
