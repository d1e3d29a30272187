// Package io reads and writes causal model files.
//
// # Model Files
//
// A model file describes the observational network, its latent confounders
// and any manual edits of the causal graph. JSON, YAML and TOML encode the
// same document; the format is picked from the file extension.
//
//	name: smoking
//	variables:
//	  - name: smoking
//	    labels: ["no", "yes"]
//	    cpt: [0.7, 0.3]
//	  - name: tar
//	    labels: ["no", "yes"]
//	    parents: [smoking]
//	    cpt: [0.9, 0.1, 0.05, 0.95]
//	  - name: cancer
//	    labels: ["no", "yes"]
//	    parents: [tar]
//	    cpt: [0.9, 0.1, 0.2, 0.8]
//	latents:
//	  - name: genotype
//	    children: [smoking, cancer]
//
// Each cpt lists P(variable | parents) with the variable varying fastest,
// then each parent in the order given by parents. A missing cpt leaves the
// table uniform.
//
// Latents are added after the network is built. Unless keep_arcs is set, a
// latent erases every arc between two of its children from the causal
// graph. The optional erase_arcs and add_arcs lists are applied last.
//
// # Graph Export
//
// [WriteGraphJSON] writes the causal graph alone as a node/edge document,
// with latent nodes flagged in their metadata. It carries no probabilities
// and cannot be read back as a model.
//
// # Concurrency
//
// Reading creates independent models. Writing only reads the model and may
// run concurrently with other readers.
package io
