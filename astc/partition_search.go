package astc

// findBestPartitionCandidates scores the non-skipped partitionings for a
// partition count by projecting the block's colors onto two lines per
// partition: the uncorrelated line through the partition mean along its
// dominant weighted direction, and the same-chroma line from the origin
// through the mean. It returns the seed minimizing total uncorrelated error
// and the seed minimizing total same-chroma error; the two may differ.
//
// The search stops after partitionSearchLimit scored seeds. Ties keep the
// lower seed.
func findBestPartitionCandidates(bsd *blockSizeDescriptor, blk *imageBlock, ewb *errorWeightBlock, partitionCount, partitionSearchLimit int) (bestUncor, bestSamec int) {
	usesAlpha := !blk.isConstantChannel(3)

	table := bsd.partitionTable(partitionCount)

	bestUncor = 0
	bestSamec = 0
	bestUncorError := float32(errorCalcDefault)
	bestSamecError := float32(errorCalcDefault)

	scored := 0
	for seed := 0; seed < len(table) && scored < partitionSearchLimit; seed++ {
		pi := &table[seed]
		if pi.partitionCount == 0 {
			continue
		}
		scored++

		var pms [blockMaxPartitions]partitionMetrics
		if usesAlpha {
			computeAvgsAndDirs4Comp(pi, blk, ewb, pms[:])
		} else {
			computeAvgsAndDirs3Comp(pi, blk, ewb, 3, pms[:])
		}

		var uncorError, samecError float32
		for p := 0; p < pi.partitionCount; p++ {
			avg := pms[p].avg
			uncorDir := pms[p].dir.normalizeSafe(vfloat4{0.5, 0.5, 0.5, 0.5})
			samecDir := avg.normalizeSafe(vfloat4{0.5, 0.5, 0.5, 0.5})

			for _, tt := range pi.texelsOfPartition[p] {
				t := int(tt)
				tw := ewb.texelWeight[t]
				if !usesAlpha {
					tw = ewb.texelWeightRGB[t]
				}
				tex := blk.texel(t)
				if !usesAlpha {
					tex[3] = 0
				}

				du := tex.sub(avg)
				paramU := du.dot(uncorDir)
				perpU := du.sub(uncorDir.scale(paramU))
				uncorError += tw * perpU.dot(perpU)

				paramS := tex.dot(samecDir)
				perpS := tex.sub(samecDir.scale(paramS))
				samecError += tw * perpS.dot(perpS)
			}
		}

		if uncorError < bestUncorError {
			bestUncorError = uncorError
			bestUncor = seed
		}
		if samecError < bestSamecError {
			bestSamecError = samecError
			bestSamec = seed
		}
	}

	return bestUncor, bestSamec
}
