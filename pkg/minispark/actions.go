package minispark

// Count materializes dataset and returns its total element count across
// all partitions.
func (e *Engine) Count(dataset *Node) (int, error) {
	if err := e.checkRunning(); err != nil {
		return 0, err
	}
	if err := e.execute(dataset); err != nil {
		return 0, err
	}
	e.pool.WaitIdle()

	total := 0
	for _, partition := range dataset.Partitions {
		total += len(partition)
	}
	return total, nil
}

// Print materializes dataset and calls p on every element, partition by
// partition, in partition order.
func (e *Engine) Print(dataset *Node, p Printer) error {
	if err := e.checkRunning(); err != nil {
		return err
	}
	if err := e.execute(dataset); err != nil {
		return err
	}
	e.pool.WaitIdle()

	for _, partition := range dataset.Partitions {
		for _, el := range partition {
			p(el)
		}
	}
	return nil
}
