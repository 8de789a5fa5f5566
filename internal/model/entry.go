package model

// MealType is one of the four journal meal slots. Menus only exist for the
// first three; Snack is journal-only.
type MealType string

const (
	MealBreakfast MealType = "Breakfast"
	MealLunch     MealType = "Lunch"
	MealDinner    MealType = "Dinner"
	MealSnack     MealType = "Snack"
)

// MealTypes lists the valid meal types in their canonical display order.
// Journal listings sort by this order, not alphabetically (alphabetical
// would put Dinner before Lunch).
var MealTypes = []MealType{MealBreakfast, MealLunch, MealDinner, MealSnack}

// ValidMealType reports whether s is one of the four known meal types.
func ValidMealType(s string) bool {
	switch MealType(s) {
	case MealBreakfast, MealLunch, MealDinner, MealSnack:
		return true
	}
	return false
}

// JournalEntry is one logged food-journal record.
//
// The nutrition fields are a snapshot captured at log time. There is no
// foreign key into live menu data: if the vendor changes a dish's macros
// next week, entries already logged keep the values the student actually
// saw. Entries are immutable — an "edit" in the UI is a delete plus a new
// entry — so the only write operations are insert and delete-by-ID.
type JournalEntry struct {
	ID         string   `json:"entryId"`
	UserID     string   `json:"userId"`
	Date       string   `json:"date"` // "YYYY-MM-DD", the day the food was eaten
	MealType   MealType `json:"mealType"`
	FoodItem   string   `json:"foodItem"`
	DiningHall string   `json:"diningHall"` // display label; may be an alias, not the vendor code
	Notes      string   `json:"notes"`
	Calories   float64  `json:"calories"`
	ProteinG   float64  `json:"proteinG"`
	CarbsG     float64  `json:"carbsG"`
	FatG       float64  `json:"fatG"`
}

// MealTotals is the per-meal aggregate over a set of journal entries.
type MealTotals struct {
	TotalCalories float64 `json:"totalCalories"`
	TotalProteinG float64 `json:"totalProteinG"`
	TotalCarbsG   float64 `json:"totalCarbsG"`
	TotalFatG     float64 `json:"totalFatG"`
	Count         int     `json:"count"`
}
