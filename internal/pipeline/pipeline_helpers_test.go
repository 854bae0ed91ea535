package pipeline

import "github.com/stwalsh4118/housingdash/api/internal/models"

func intPtr(v int) *int { return &v }

func sale(geoid string, year, month int, price, priceSF float64, built int, subGeo string) models.Transaction {
	tx := models.Transaction{
		GEOID:     geoid,
		SaleYear:  year,
		SaleMonth: month,
		Price:     price,
		PriceSF:   priceSF,
		SubGeo:    subGeo,
		County:    "Henry",
	}
	if built > 0 {
		tx.YearBuilt = intPtr(built)
	}
	return tx
}

func henrySales() []models.Transaction {
	return []models.Transaction{
		sale("A", 2018, 3, 180000, 90, 1995, "McDonough"),
		sale("A", 2020, 1, 200000, 100, 2005, "McDonough"),
		sale("A", 2020, 6, 220000, 110, 2015, "East Henry"),
		sale("B", 2021, 2, 150000, 50, 1980, "East Henry"),
		sale("B", 2022, 11, 300000, 150, 2019, "West Henry"),
		sale("C", 2022, 4, 260000, 130, 0, "West Henry"),
	}
}

func countySelection(from, to int) models.FilterSelection {
	return models.FilterSelection{
		YearFrom:  from,
		YearTo:    to,
		BuiltFrom: "<2000",
		BuiltTo:   "2011-2023",
		Geography: models.GeographyCounty,
	}
}
