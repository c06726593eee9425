package entity

import "github.com/shopspring/decimal"

// Recipe receta asociada a una orden de trabajo. YieldQty es el rendimiento de una tanda.
type Recipe struct {
	ID           string
	Name         string
	Ingredients  []RecipeIngredient
	Instructions []string
	YieldQty     decimal.Decimal
	YieldUnit    string
}

// RecipeIngredient insumo de la receta, referenciado por SKU.
type RecipeIngredient struct {
	SKUID string
	Name  string
	Qty   decimal.Decimal
	Unit  string
	Notes string
}

// Clone devuelve una copia profunda de la receta.
func (r Recipe) Clone() Recipe {
	if r.Ingredients != nil {
		ing := make([]RecipeIngredient, len(r.Ingredients))
		copy(ing, r.Ingredients)
		r.Ingredients = ing
	}
	if r.Instructions != nil {
		steps := make([]string, len(r.Instructions))
		copy(steps, r.Instructions)
		r.Instructions = steps
	}
	return r
}
