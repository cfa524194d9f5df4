package book

import "librental/model"

type CreateBookReq struct {
	Title     string          `json:"title" validate:"required"`
	Author    string          `json:"author" validate:"required"`
	Cover     model.CoverType `json:"cover" validate:"required,oneof=SOFT HARD"`
	Inventory int64           `json:"inventory" validate:"gte=0"`
	DailyFee  float64         `json:"daily_fee" validate:"required,gt=0"`
}

type UpdateBookReq struct {
	Title     *string          `json:"title,omitempty" validate:"omitempty,min=1"`
	Author    *string          `json:"author,omitempty" validate:"omitempty,min=1"`
	Cover     *model.CoverType `json:"cover,omitempty" validate:"omitempty,oneof=SOFT HARD"`
	Inventory *int64           `json:"inventory,omitempty" validate:"omitempty,gte=0"`
	DailyFee  *float64         `json:"daily_fee,omitempty" validate:"omitempty,gt=0"`
}
