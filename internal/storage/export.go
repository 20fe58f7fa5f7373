package storage

import (
	"encoding/json"
	"os"
)

type ExportData struct {
	Run       RunMetadata  `json:"run"`
	Positions [][3]float64 `json:"positions"`
	Charges   []float64    `json:"charges"`
	Forces    [][3]float64 `json:"forces"`
	Energies  []float64    `json:"energies"`
}

// ExportJSON writes a run and its force table as a single JSON document.
func ExportJSON(path string, meta RunMetadata, records []Record) error {
	data := ExportData{
		Run:       meta,
		Positions: make([][3]float64, len(records)),
		Charges:   make([]float64, len(records)),
		Forces:    make([][3]float64, len(records)),
		Energies:  make([]float64, len(records)),
	}
	for i, r := range records {
		data.Positions[i] = [3]float64{r.Pos.X, r.Pos.Y, r.Pos.Z}
		data.Charges[i] = r.Charge
		data.Forces[i] = [3]float64{r.Force.X, r.Force.Y, r.Force.Z}
		data.Energies[i] = r.Energy
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
