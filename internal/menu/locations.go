// Package menu talks to the AVI FoodSystems dining API and carries the
// static campus configuration: which dining halls exist, which meals each
// serves, and the vendor's numeric IDs for every (hall, meal) pair.
package menu

import "github.com/wcrave/wellesley-crave/internal/model"

// Halls in the order the UI presents them.
const (
	HallBae    = "Bae"
	HallBates  = "Bates"
	HallStoneD = "Stone D"
	HallTower  = "Tower"
)

// Halls lists the four campus dining halls.
var Halls = []string{HallBae, HallBates, HallStoneD, HallTower}

// HallAliases maps informal display names onto canonical hall names.
// "Bae" is the Bae Pao Lu Chow hall, which half of campus calls "Lulu";
// journal entries store whichever label the student saw, but lookups into
// the vendor code table need the canonical name.
var HallAliases = map[string]string{
	"Lulu": HallBae,
}

// Allergens is the vendor-defined allergen vocabulary. Preference updates
// reject anything not in this list.
var Allergens = []string{
	"Peanut", "Soy", "Dairy", "Egg", "Wheat",
	"Sesame", "Shellfish", "Fish", "Tree Nut",
}

// DietaryRestrictions is the fixed restriction/preference vocabulary.
var DietaryRestrictions = []string{
	"Vegetarian", "Vegan", "Gluten Sensitive",
	"Halal", "Kosher", "Lactose-Intolerant",
}

// Combo is one (dining hall, meal) pair with the vendor's numeric IDs.
type Combo struct {
	Hall       string         `json:"hall"`
	Meal       model.MealType `json:"meal"`
	LocationID int            `json:"locationId"`
	MealID     int            `json:"mealId"`
}

// Combos is the full vendor code table: four halls × three meals. The IDs
// are vendor-assigned and stable; they are configuration, not fetched data.
// Snack has no menu — it exists only in the journal.
var Combos = []Combo{
	{HallBae, model.MealBreakfast, 96, 148},
	{HallBae, model.MealLunch, 96, 149},
	{HallBae, model.MealDinner, 96, 312},
	{HallBates, model.MealBreakfast, 95, 145},
	{HallBates, model.MealLunch, 95, 146},
	{HallBates, model.MealDinner, 95, 311},
	{HallStoneD, model.MealBreakfast, 131, 261},
	{HallStoneD, model.MealLunch, 131, 262},
	{HallStoneD, model.MealDinner, 131, 263},
	{HallTower, model.MealBreakfast, 97, 153},
	{HallTower, model.MealLunch, 97, 154},
	{HallTower, model.MealDinner, 97, 310},
}

// LookupCombo resolves a (hall, meal) pair — accepting hall aliases — to
// its vendor IDs. The second return is false for unknown pairs (including
// Snack, which no hall serves as a menu).
func LookupCombo(hall string, meal model.MealType) (Combo, bool) {
	if canonical, ok := HallAliases[hall]; ok {
		hall = canonical
	}
	for _, c := range Combos {
		if c.Hall == hall && c.Meal == meal {
			return c, true
		}
	}
	return Combo{}, false
}

// ValidHall reports whether hall names a dining hall (aliases included).
func ValidHall(hall string) bool {
	if _, ok := HallAliases[hall]; ok {
		return true
	}
	for _, h := range Halls {
		if h == hall {
			return true
		}
	}
	return false
}
