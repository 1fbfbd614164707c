// Command svmdemo drives the coordinate-descent or chunking trainer over
// a handful of classic toy problems and prints the discriminant on a
// small grid. It is not part of the trained core (spec §6.4 lists no CLI)
// — it exists only as an ambient "how do I use this library" example.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/grammophone/gosvm/chunking"
	"github.com/grammophone/gosvm/coordinate"
	"github.com/grammophone/gosvm/innersolver"
	"github.com/grammophone/gosvm/kernel"
	"github.com/grammophone/gosvm/svm"
)

func main() {
	problem := flag.String("problem", "linear", "toy problem: linear or xor")
	trainerName := flag.String("trainer", "coordinate", "trainer: coordinate or chunking")
	c := flag.Float64("c", 1.0, "soft-margin penalty C")
	gamma := flag.Float64("gamma", 1.0, "RBF kernel gamma (xor problem only)")
	gridSize := flag.Int("grid", 5, "number of grid points per axis when printing the discriminant")
	flag.Parse()

	pairs, k, err := buildProblem(*problem, *gamma)
	if err != nil {
		log.Fatal(err)
	}

	trainer, err := buildTrainer(*trainerName)
	if err != nil {
		log.Fatal(err)
	}

	classifier := svm.NewBinaryClassifier[[]float64](k, trainer)
	if err := classifier.Train(pairs, *c); err != nil {
		log.Fatalf("training failed: %v", err)
	}

	printGrid(classifier, *gridSize)
}

func buildProblem(name string, gamma float64) ([]svm.TrainingPair[[]float64], kernel.Kernel[[]float64], error) {
	switch name {
	case "linear":
		return []svm.TrainingPair[[]float64]{
			{Item: []float64{1, 0}, Class: 1},
			{Item: []float64{-1, 0}, Class: -1},
		}, kernel.NewLinear(), nil
	case "xor":
		return []svm.TrainingPair[[]float64]{
			{Item: []float64{0, 0}, Class: -1},
			{Item: []float64{1, 1}, Class: -1},
			{Item: []float64{0, 1}, Class: 1},
			{Item: []float64{1, 0}, Class: 1},
		}, kernel.NewGaussian(gamma), nil
	default:
		return nil, nil, fmt.Errorf("unknown problem %q (want linear or xor)", name)
	}
}

func buildTrainer(name string) (svm.Trainer[[]float64], error) {
	switch name {
	case "coordinate":
		return svm.CoordinateTrainer[[]float64]{Options: coordinate.DefaultOptions()}, nil
	case "chunking":
		return svm.ChunkingTrainer[[]float64]{
			Options:      chunking.DefaultOptions(),
			Solve:        innersolver.LineSearch,
			InnerOptions: innersolver.DefaultOptions(),
		}, nil
	default:
		return nil, fmt.Errorf("unknown trainer %q (want coordinate or chunking)", name)
	}
}

func printGrid(classifier *svm.BinaryClassifier[[]float64], gridSize int) {
	const extent = 2.0
	step := 2 * extent / float64(gridSize-1)
	for row := 0; row < gridSize; row++ {
		y := -extent + float64(row)*step
		for col := 0; col < gridSize; col++ {
			x := -extent + float64(col)*step
			v := classifier.Discriminate([]float64{x, y})
			fmt.Fprintf(os.Stdout, "%7.3f", v)
		}
		fmt.Fprintln(os.Stdout)
	}
}
