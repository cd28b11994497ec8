// Package training fits and compares classifiers on the encoded credit
// table.
//
// Four models are evaluated on the same seeded train/test split:
//
//   - Baseline: predicts the majority class of the training rows
//   - KNN: k and distance chosen by F1 on a validation split of the
//     training rows, features standardised with training statistics
//   - NaiveBayes: Bernoulli naive Bayes over binarised features
//   - RandomForest: bagged ID3 trees, forest size chosen by F1 on the
//     same validation split
//
// Metrics treat "bad" credit as the positive class. Feature importance is
// the mean accuracy the forest loses on the test rows when one feature is
// shuffled.
package training
