package exportcsv

const noDataMessage = "No data found."
